package main

import (
	"context"
	"strings"

	"github.com/spetersoncode/a2ui/schema"
	"github.com/spetersoncode/a2ui/tool"
)

// Contact is an entry in the demo directory.
type Contact struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
}

var directory = []Contact{
	{Name: "Alex Jordan", Title: "Software Engineer", Department: "Engineering", Email: "alex.jordan@example.com", Phone: "+1-555-0101"},
	{Name: "Casey Smith", Title: "Product Manager", Department: "Product", Email: "casey.smith@example.com", Phone: "+1-555-0102"},
	{Name: "Jordan Lee", Title: "Designer", Department: "Design", Email: "jordan.lee@example.com", Phone: "+1-555-0103"},
	{Name: "Sam Rivera", Title: "Sales Lead", Department: "Sales", Email: "sam.rivera@example.com", Phone: "+1-555-0104"},
}

type contactArgs struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

var contactParams = schema.Object().
	Field("name", schema.String().Desc("Full or partial name to search for")).
	Field("department", schema.String().Desc("Department to filter by")).
	MustBuild()

// DemoTools returns the tools of the demo contact agent.
func DemoTools() []tool.Tool {
	return []tool.Tool{
		tool.Func("get_contact_info",
			"Look up people in the company directory by name and/or department",
			contactParams,
			func(_ context.Context, _ *tool.Context, args contactArgs) (map[string]any, error) {
				return map[string]any{"contacts": findContacts(args.Name, args.Department)}, nil
			}),
	}
}

func findContacts(name, department string) []Contact {
	var out []Contact
	for _, c := range directory {
		if name != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			continue
		}
		if department != "" && !strings.EqualFold(c.Department, department) {
			continue
		}
		out = append(out, c)
	}
	return out
}
