package model

import "github.com/tidwall/gjson"

type Department struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Manager     string `json:"manager,omitempty"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON accepts a full record or a bare name.
func (d *Department) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	if r.Type == gjson.String {
		*d = Department{Name: r.String()}
		return nil
	}
	*d = Department{
		Key:         field(r, "key"),
		Name:        field(r, "name", "departmentname", "department_name"),
		Code:        field(r, "code"),
		Manager:     field(r, "manager"),
		Description: field(r, "description"),
	}
	return nil
}

func (d *Department) SetKey(key string) { d.Key = key }

type Application struct {
	Key  string `json:"key,omitempty"`
	Name string `json:"name"`
}

func (a *Application) UnmarshalJSON(data []byte) error {
	r, err := parseObject(data)
	if err != nil {
		return err
	}
	if r.Type == gjson.String {
		*a = Application{Name: r.String()}
		return nil
	}
	*a = Application{
		Key:  field(r, "key"),
		Name: field(r, "name", "applicationname", "applicationName"),
	}
	return nil
}

func (a *Application) SetKey(key string) { a.Key = key }
