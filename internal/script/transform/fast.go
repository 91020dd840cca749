package transform

import (
	"github.com/evanw/esbuild/pkg/api"

	"github.com/tomprince/bitburner-src/internal/script/filetype"
)

// transformEngine uses esbuild's single-file transform, then rewrites the
// specifiers of the emitted JavaScript.
type transformEngine struct {
	engineConfig
}

func (e *transformEngine) Name() string { return EngineTransform }

func (e *transformEngine) Transform(filename, code string, t filetype.Type, resolve ImportResolver) (string, error) {
	loader, err := loaderFor(filename, t)
	if err != nil {
		return "", err
	}

	result := api.Transform(code, api.TransformOptions{
		Sourcefile:  filename,
		Loader:      loader,
		Format:      api.FormatESModule,
		Target:      e.target,
		JSXFactory:  e.factory,
		JSXFragment: e.fragment,
		LogLevel:    api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		return "", messageError(filename, result.Errors, nil)
	}

	out, err := RewriteSpecifiers(string(result.Code), filetype.JS, resolve)
	if err != nil {
		return "", &TransformError{Filename: filename, Message: err.Error(), Err: err}
	}
	return out, nil
}
