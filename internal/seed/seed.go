// Package seed loads the bundled sample forms into a store.
package seed

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiForms/internal/jsonx"
	"github.com/parisxmas/OxiDB/OxiForms/internal/service"
)

//go:embed forms/*.json
var bundled embed.FS

// Result counts what a seed run changed.
type Result struct {
	Created int
	Updated int
}

// Forms returns the bundled sample forms ordered by file name.
func Forms() ([]service.FormInput, error) {
	return load(bundled, "forms")
}

func load(fsys fs.FS, dir string) ([]service.FormInput, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read seed dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var inputs []service.FormInput
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		var in service.FormInput
		if err := jsonx.Unmarshal(raw, &in); err != nil {
			return nil, fmt.Errorf("decode %s: %w", e.Name(), err)
		}
		if in.Slug == "" {
			return nil, fmt.Errorf("%s: slug is required", e.Name())
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// Run upserts every input by slug: existing forms are updated in place and
// missing ones are created.
func Run(forms *service.FormService, inputs []service.FormInput, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var res Result
	for _, in := range inputs {
		existing, err := forms.GetBySlug(in.Slug)
		switch {
		case err == nil:
			if _, err := forms.Update(existing.ID, in); err != nil {
				return res, fmt.Errorf("update %q: %w", in.Slug, err)
			}
			res.Updated++
			log.Info("Seed form updated", zap.String("slug", in.Slug), zap.Int64("form_id", existing.ID))
		case errors.Is(err, service.ErrFormNotFound):
			form, err := forms.Create(in)
			if err != nil {
				return res, fmt.Errorf("create %q: %w", in.Slug, err)
			}
			res.Created++
			log.Info("Seed form created", zap.String("slug", form.Slug), zap.Int64("form_id", form.ID))
		default:
			return res, fmt.Errorf("lookup %q: %w", in.Slug, err)
		}
	}
	return res, nil
}
