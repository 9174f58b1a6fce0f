package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/adsorbgridgo/internal/config"
	"github.com/vk/adsorbgridgo/internal/ctxlog"
	"github.com/vk/adsorbgridgo/internal/fsutil"
	"github.com/vk/adsorbgridgo/internal/schema"
)

// Loader reads run-request HCL files into the agnostic config model.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

var _ config.Loader = (*Loader)(nil)

// Load implements config.Loader. Each path may be a single .hcl file or a
// directory of them; blocks from later files override earlier ones.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.Defaults()

	var files []string
	for _, path := range paths {
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("locating request files under %s: %w", path, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl request files found in %v", paths)
	}

	for _, file := range files {
		hclFile, diags := l.parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %s", file, diags.Error())
		}
		var req schema.Request
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &req); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %s", file, diags.Error())
		}
		if err := l.merge(model, &req); err != nil {
			return nil, fmt.Errorf("translating %s: %w", file, err)
		}
		logger.Debug("request file loaded", "file", file)
	}

	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return model, nil
}
