package naming

import "fmt"

// Preview renders count sample filenames from a compiled template, stepping
// the sequence number from 1 upward. Used by the CLI to show how a template
// behaves before a batch runs.
func Preview(template *Template, registry *Registry, ctx *Context, count int, maxComponentBytes int) []string {
	if count <= 0 {
		count = 5
	}
	if ctx == nil {
		ctx = &Context{}
	}
	samples := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		sample := *ctx
		sample.Sequence = i
		rendered, err := Render(template, registry, &sample, maxComponentBytes)
		if err != nil {
			samples = append(samples, fmt.Sprintf("[error: %v]", err))
			continue
		}
		samples = append(samples, rendered+".jpg")
	}
	return samples
}
