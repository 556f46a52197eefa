// Command apicompat diffs two generated OpenAPI documents and fails when
// the newer one removes paths, operations, or response codes the mobile
// and web clients still depend on.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// spec is the slice of an OpenAPI document this tool cares about:
// paths -> methods -> declared response codes.
type spec map[string]map[string]map[string]struct{}

var methods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {},
	"patch": {}, "head": {}, "options": {},
}

func main() {
	oldPath := flag.String("old", "", "previously published swagger document (yaml or json)")
	newPath := flag.String("new", "", "freshly generated swagger document (yaml or json)")
	flag.Parse()

	if *oldPath == "" || *newPath == "" {
		fmt.Fprintln(os.Stderr, "usage: apicompat -old <path> -new <path>")
		os.Exit(2)
	}

	oldSpec, err := load(*oldPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *oldPath, err)
		os.Exit(1)
	}
	newSpec, err := load(*newPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read %s: %v\n", *newPath, err)
		os.Exit(1)
	}

	breaks := diff(oldSpec, newSpec)
	if len(breaks) > 0 {
		fmt.Fprintln(os.Stderr, "breaking API changes detected:")
		for _, b := range breaks {
			fmt.Fprintf(os.Stderr, "  %s\n", b)
		}
		os.Exit(1)
	}
	fmt.Println("no breaking API changes")
}

// load parses the paths section of a swagger document. YAML parsing also
// covers JSON documents, so swagger.json works unchanged.
func load(path string) (spec, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- dev tool, path from CLI flag
	if err != nil {
		return nil, err
	}

	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, fmt.Errorf("document has no paths section")
	}

	out := make(spec, len(doc.Paths))
	for path, entries := range doc.Paths {
		ops := make(map[string]map[string]struct{})
		for method, node := range entries {
			method = strings.ToLower(method)
			if _, ok := methods[method]; !ok {
				continue
			}

			var op struct {
				Responses map[string]yaml.Node `yaml:"responses"`
			}
			if err := node.Decode(&op); err != nil {
				continue
			}

			codes := make(map[string]struct{}, len(op.Responses))
			for code := range op.Responses {
				codes[strings.TrimSpace(code)] = struct{}{}
			}
			ops[method] = codes
		}
		if len(ops) > 0 {
			out[path] = ops
		}
	}
	return out, nil
}

// diff lists everything present in old but missing from new.
func diff(oldSpec, newSpec spec) []string {
	var breaks []string

	for path, oldOps := range oldSpec {
		newOps, ok := newSpec[path]
		if !ok {
			breaks = append(breaks, fmt.Sprintf("path removed: %s", path))
			continue
		}
		for method, oldCodes := range oldOps {
			newCodes, ok := newOps[method]
			if !ok {
				breaks = append(breaks, fmt.Sprintf("operation removed: %s %s",
					strings.ToUpper(method), path))
				continue
			}
			for code := range oldCodes {
				if _, ok := newCodes[code]; !ok {
					breaks = append(breaks, fmt.Sprintf("response removed: %s %s %s",
						strings.ToUpper(method), path, code))
				}
			}
		}
	}

	sort.Strings(breaks)
	return breaks
}
