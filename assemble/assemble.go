// Package assemble turns a resolved command definition plus bindings into a
// concrete ExecutionSpec.
package assemble

import (
	"os"

	"github.com/google/uuid"

	"github.com/hypernetix/rclib/domain"
	"github.com/hypernetix/rclib/template"
)

// Selected is the set of argument names the caller actually supplied.
type Selected map[string]struct{}

// NewSelected builds a Selected set from argument names.
func NewSelected(names ...string) Selected {
	out := make(Selected, len(names))
	for _, n := range names {
		out[n] = struct{}{}
	}
	return out
}

// Build assembles the ExecutionSpec for one attempt. It never fails:
// validation of required fields happens upstream, and a missing override
// file degrades to "no override". Every call injects a fresh uuid built-in,
// so repeated attempts get distinct bindings.
func Build(baseURL string, cmd *domain.CommandSpec, vars domain.Vars, selected Selected) domain.ExecutionSpec {
	bound := vars.Clone()
	bound["uuid"] = uuid.NewString()
	applyFileOverrides(cmd.Args, bound)

	if cmd.CustomHandler != "" {
		return domain.NewHandlerSpec(domain.HandlerSpec{
			Name:    cmd.CustomHandler,
			BaseURL: baseURL,
			Vars:    bound,
		})
	}

	if cmd.Scenario != nil {
		return domain.NewScenarioSpec(domain.ScenarioSpec{
			BaseURL:  baseURL,
			Scenario: *cmd.Scenario,
			Vars:     bound,
		})
	}

	method := cmd.Method
	endpoint := template.Substitute(cmd.Endpoint, bound)
	var body *string
	if cmd.Body != nil {
		b := template.Substitute(*cmd.Body, bound)
		body = &b
	}
	headers := map[string]string{}
	for k, v := range cmd.Headers {
		headers[k] = v
	}

	// Per-argument overrides replace command-level values, applied in the
	// declaration order of the arguments so the result is deterministic.
	for _, a := range cmd.Args {
		if a.Name == "" {
			continue
		}
		if _, ok := selected[a.Name]; !ok {
			continue
		}
		if a.Endpoint != nil {
			endpoint = template.Substitute(*a.Endpoint, bound)
		}
		if a.Method != nil {
			method = *a.Method
		}
		for k, v := range a.Headers {
			headers[k] = v
		}
		if a.Body != nil {
			b := template.Substitute(*a.Body, bound)
			body = &b
		}
	}

	fileFields := map[string]string{}
	if cmd.Multipart {
		for _, a := range cmd.Args {
			if !a.FileUpload || a.Name == "" {
				continue
			}
			if path, ok := bound[a.Name]; ok {
				fileFields[a.Name] = path
			}
		}
	}

	return domain.NewSimpleSpec(domain.RequestDescriptor{
		BaseURL:    baseURL,
		Method:     method,
		Endpoint:   endpoint,
		Headers:    template.SubstituteHeaders(headers, bound),
		Body:       body,
		Multipart:  cmd.Multipart,
		FileFields: fileFields,
		TableHint:  cmd.TableView,
	})
}

// applyFileOverrides reads each "file" argument whose bound value is a
// non-empty path and stores the file's contents under the declared target
// variable. Unreadable files are skipped so the command-level value stays.
func applyFileOverrides(args []domain.ArgSpec, vars domain.Vars) {
	for _, a := range args {
		if a.Type != "file" || a.FileOverridesValueOf == "" || a.Name == "" {
			continue
		}
		path := vars[a.Name]
		if path == "" {
			continue
		}
		content, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		vars[a.FileOverridesValueOf] = string(content)
	}
}
