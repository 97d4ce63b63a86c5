package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"sprint-tracker/internal/model"
	"sprint-tracker/internal/repository"
	"sprint-tracker/internal/service"
	"sprint-tracker/internal/session"
)

// signedIn returns a client carrying the saved token. The server saved at
// signin wins unless --server was given.
func signedIn(cmd *cobra.Command) (*apiClient, savedSession, error) {
	saved, err := loadSession(sessionPath)
	if err != nil {
		return nil, saved, err
	}
	server := serverURL
	if !cmd.Flags().Changed("server") && saved.Server != "" {
		server = saved.Server
	}
	return newAPIClient(server, saved.Token), saved, nil
}

// listQuery builds q, sort and order. --sort without --order steps the
// view's last sort through asc, desc and back to none.
func listQuery(cmd *cobra.Command, last sortState) (query map[string]string, cycling bool) {
	q, _ := cmd.Flags().GetString("q")
	column, _ := cmd.Flags().GetString("sort")
	order, _ := cmd.Flags().GetString("order")
	if column == "" || order != "" {
		return map[string]string{"q": q, "sort": column, "order": order}, false
	}
	return map[string]string{"q": q, "sort": last.Column, "order": last.Order, "toggle": column}, true
}

func addListFlags(cmd *cobra.Command) {
	cmd.Flags().String("q", "", "case-insensitive search")
	cmd.Flags().String("sort", "", "column to sort by; repeat without --order to cycle asc, desc, none")
	cmd.Flags().String("order", "", "asc or desc")
}

// fetch GETs path and either prints the JSON or hands it to render.
func fetch(cmd *cobra.Command, path string, query map[string]string, render func([]byte) error) error {
	client, _, err := signedIn(cmd)
	if err != nil {
		return err
	}
	raw, err := client.call(cmd.Context(), "GET", path, query, nil)
	if err != nil {
		return err
	}
	return output(cmd, raw, render)
}

// fetchList is fetch for sortable list views. A cycled sort is saved per
// path in the session file.
func fetchList(cmd *cobra.Command, path string, render func([]byte) error) error {
	client, saved, err := signedIn(cmd)
	if err != nil {
		return err
	}
	query, cycling := listQuery(cmd, saved.Sorts[path])
	raw, err := client.call(cmd.Context(), "GET", path, query, nil)
	if err != nil {
		return err
	}
	if cycling {
		state, err := rememberSort(saved, path, raw)
		if err != nil {
			return err
		}
		if state.Column == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "Sort cleared")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Sorted by %s (%s)\n", state.Column, state.Order)
		}
	}
	return output(cmd, raw, render)
}

func rememberSort(saved savedSession, path string, raw []byte) (sortState, error) {
	var resp struct {
		Sort  sortState `json:"sort"`
		Order string    `json:"order"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return sortState{}, err
	}
	state := sortState{Column: resp.Sort.Column, Order: resp.Order}
	if saved.Sorts == nil {
		saved.Sorts = make(map[string]sortState)
	}
	if state.Column == "" {
		delete(saved.Sorts, path)
	} else {
		saved.Sorts[path] = state
	}
	return state, saveSession(sessionPath, saved)
}

func output(cmd *cobra.Command, raw []byte, render func([]byte) error) error {
	if asJSON {
		return printJSON(cmd.OutOrStdout(), raw)
	}
	return render(raw)
}

func escape(key string) string { return url.PathEscape(key) }

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in with an employee ID",
	RunE: func(cmd *cobra.Command, args []string) error {
		empID, _ := cmd.Flags().GetString("empid")
		password, _ := cmd.Flags().GetString("password")

		var resp struct {
			Token   string          `json:"token"`
			Session session.Session `json:"session"`
		}
		client := newAPIClient(serverURL, "")
		err := client.send(cmd.Context(), "POST", "/signin", map[string]string{"empid": empID, "password": password}, &resp)
		if err != nil {
			return err
		}
		if err := saveSession(sessionPath, savedSession{Server: serverURL, Token: resp.Token, Session: resp.Session}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s, %s)\n", resp.Session.Name, resp.Session.EmpID, resp.Session.Role)
		return nil
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := signedIn(cmd)
		if err == errNotSignedIn {
			return nil
		}
		if err != nil {
			return err
		}
		if err := client.send(cmd.Context(), "POST", "/signout", nil, nil); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", err)
		}
		if err := clearSession(sessionPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in employee",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, "/me", nil, func(raw []byte) error {
			var s session.Session
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\nRole: %s\nDepartment: %s\n", s.Name, s.EmpID, s.Role, orDash(s.Department))
			return nil
		})
	},
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show summary cards and recent sprints",
	RunE: func(cmd *cobra.Command, args []string) error {
		q, _ := cmd.Flags().GetString("q")
		return fetch(cmd, "/dashboard", map[string]string{"q": q}, func(raw []byte) error {
			var d service.Dashboard
			if err := json.Unmarshal(raw, &d); err != nil {
				return err
			}
			return renderDashboard(cmd.OutOrStdout(), d)
		})
	},
}

var sprintsCmd = &cobra.Command{
	Use:   "sprints",
	Short: "List sprints visible to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchList(cmd, "/sprints", func(raw []byte) error {
			var view service.ListView[model.Sprint]
			if err := json.Unmarshal(raw, &view); err != nil {
				return err
			}
			return renderSprints(cmd.OutOrStdout(), view)
		})
	},
}

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List issues visible to you",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/issues"
		if raised, _ := cmd.Flags().GetBool("employee-created"); raised {
			path = "/issues/employee-created"
		}
		return fetchList(cmd, path, func(raw []byte) error {
			var view service.ListView[model.Issue]
			if err := json.Unmarshal(raw, &view); err != nil {
				return err
			}
			return renderIssues(cmd.OutOrStdout(), view)
		})
	},
}

var raiseIssueCmd = &cobra.Command{
	Use:   "raise <title>",
	Short: "Raise a new issue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := signedIn(cmd)
		if err != nil {
			return err
		}
		flag := func(name string) string {
			v, _ := cmd.Flags().GetString(name)
			return v
		}
		form := map[string]string{
			"title":           strings.Join(args, " "),
			"applicationname": flag("application"),
			"department":      flag("department"),
			"assigned_to":     flag("assign"),
			"priority":        flag("priority"),
			"status":          flag("status"),
			"start_date":      flag("start"),
			"due_date":        flag("due"),
			"description":     flag("description"),
		}
		var issue model.Issue
		if err := client.send(cmd.Context(), "POST", "/issues", form, &issue); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Issue %s raised\n", issue.Key)
		return nil
	},
}

var employeesCmd = &cobra.Command{
	Use:   "employees",
	Short: "List employees (managers), or one department with --department",
	RunE: func(cmd *cobra.Command, args []string) error {
		if dept, _ := cmd.Flags().GetString("department"); dept != "" {
			return fetch(cmd, "/employees/by-department", map[string]string{"department": dept}, func(raw []byte) error {
				var resp struct {
					Items []model.Employee `json:"items"`
				}
				if err := json.Unmarshal(raw, &resp); err != nil {
					return err
				}
				return renderEmployees(cmd.OutOrStdout(), resp.Items)
			})
		}
		return fetchList(cmd, "/employees", func(raw []byte) error {
			var view service.ListView[model.Employee]
			if err := json.Unmarshal(raw, &view); err != nil {
				return err
			}
			return renderEmployees(cmd.OutOrStdout(), view.Items)
		})
	},
}

func namesCmd(use, short, path string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fetch(cmd, path, nil, func(raw []byte) error {
				var list struct {
					Names []string `json:"names"`
				}
				if err := json.Unmarshal(raw, &list); err != nil {
					return err
				}
				for _, n := range list.Names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			})
		},
	}
}

var (
	departmentsCmd  = namesCmd("departments", "List department names", "/departments")
	applicationsCmd = namesCmd("applications", "List application names", "/applications")
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "List requirements",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetchList(cmd, "/requirements", func(raw []byte) error {
			var view service.ListView[model.Requirement]
			if err := json.Unmarshal(raw, &view); err != nil {
				return err
			}
			return renderRequirements(cmd.OutOrStdout(), view)
		})
	},
}

var showRequirementCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Show a requirement with its activity and comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, "/requirements/"+escape(args[0]), nil, func(raw []byte) error {
			d, err := decodeRequirementDetail(raw)
			if err != nil {
				return err
			}
			return renderRequirementDetail(cmd.OutOrStdout(), d)
		})
	},
}

var addRequirementCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a requirement",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := signedIn(cmd)
		if err != nil {
			return err
		}
		purpose, _ := cmd.Flags().GetString("purpose")
		app, _ := cmd.Flags().GetString("application")
		priority, _ := cmd.Flags().GetString("priority")
		due, _ := cmd.Flags().GetString("due")
		form := map[string]string{
			"title":           strings.Join(args, " "),
			"purpose":         purpose,
			"applicationName": app,
			"priority":        priority,
			"dueDate":         due,
		}
		var q model.Requirement
		if err := client.send(cmd.Context(), "POST", "/requirements", form, &q); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Requirement %s created\n", q.Key)
		return nil
	},
}

var commentRequirementCmd = &cobra.Command{
	Use:   "comment <key> <text>",
	Short: "Comment on a requirement",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := signedIn(cmd)
		if err != nil {
			return err
		}
		body := map[string]string{"text": strings.Join(args[1:], " ")}
		if err := client.send(cmd.Context(), "POST", "/requirements/"+escape(args[0])+"/comments", body, nil); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Comment added")
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the latest write attempts (managers)",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return fetch(cmd, "/audit", map[string]string{"limit": fmt.Sprint(limit)}, func(raw []byte) error {
			var resp struct {
				Items []repository.AuditEntry `json:"items"`
			}
			if err := json.Unmarshal(raw, &resp); err != nil {
				return err
			}
			return renderAudit(cmd.OutOrStdout(), resp.Items)
		})
	},
}

func init() {
	signinCmd.Flags().String("empid", "", "employee ID")
	signinCmd.Flags().String("password", "", "password")
	_ = signinCmd.MarkFlagRequired("empid")
	_ = signinCmd.MarkFlagRequired("password")

	dashboardCmd.Flags().String("q", "", "filter recent sprints by title")

	addListFlags(sprintsCmd)
	addListFlags(issuesCmd)
	issuesCmd.Flags().Bool("employee-created", false, "only issues raised by employees")
	raiseIssueCmd.Flags().String("application", "", "application name")
	raiseIssueCmd.Flags().String("department", "", "department")
	raiseIssueCmd.Flags().String("assign", "", "assignee empid")
	raiseIssueCmd.Flags().String("priority", "Medium", "priority")
	raiseIssueCmd.Flags().String("status", model.StatusPending, "status")
	raiseIssueCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	raiseIssueCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	raiseIssueCmd.Flags().String("description", "", "description")
	issuesCmd.AddCommand(raiseIssueCmd)

	addListFlags(employeesCmd)
	employeesCmd.Flags().String("department", "", "list one department instead")

	addListFlags(requirementsCmd)
	addRequirementCmd.Flags().String("purpose", "", "what the requirement is for")
	addRequirementCmd.Flags().String("application", "", "application name")
	addRequirementCmd.Flags().String("priority", "", "priority (default Medium)")
	addRequirementCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	requirementsCmd.AddCommand(showRequirementCmd)
	requirementsCmd.AddCommand(addRequirementCmd)
	requirementsCmd.AddCommand(commentRequirementCmd)

	auditCmd.Flags().Int("limit", 50, "number of entries")
}
