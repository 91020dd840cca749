package transform

import (
	"github.com/evanw/esbuild/pkg/api"

	"github.com/tomprince/bitburner-src/internal/script/filetype"
)

// bundleEngine builds the file as a one-module bundle with every import
// marked external, so esbuild prints the rewritten specifiers itself.
type bundleEngine struct {
	engineConfig
}

func (e *bundleEngine) Name() string { return EngineBundle }

func (e *bundleEngine) Transform(filename, code string, t filetype.Type, resolve ImportResolver) (string, error) {
	loader, err := loaderFor(filename, t)
	if err != nil {
		return "", err
	}
	r := newRewriter(resolve)

	result := api.Build(api.BuildOptions{
		Stdin: &api.StdinOptions{
			Contents:   code,
			Sourcefile: filename,
			Loader:     loader,
			ResolveDir: "/",
		},
		// Output path comments are relative to this, so pin it.
		AbsWorkingDir: "/",
		Bundle:        true,
		Write:         false,
		Format:        api.FormatESModule,
		Platform:      api.PlatformNeutral,
		Target:        e.target,
		JSXFactory:    e.factory,
		JSXFragment:   e.fragment,
		TreeShaking:   api.TreeShakingFalse,
		LogLevel:      api.LogLevelSilent,
		Plugins:       []api.Plugin{externalizePlugin(r)},
	})
	if len(result.Errors) > 0 {
		return "", messageError(filename, result.Errors, r.firstError())
	}
	if len(result.OutputFiles) == 0 {
		return "", &TransformError{Filename: filename, Message: "build produced no output"}
	}
	return string(result.OutputFiles[0].Contents), nil
}

// externalizePlugin resolves every import statement through r and keeps
// everything else external and untouched.
func externalizePlugin(r *rewriter) api.Plugin {
	return api.Plugin{
		Name: "nsscript-externalize",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: ".*"}, func(args api.OnResolveArgs) (api.OnResolveResult, error) {
				switch args.Kind {
				case api.ResolveEntryPoint:
					return api.OnResolveResult{}, nil
				case api.ResolveJSImportStatement:
					out, err := r.rewrite(args.Path)
					if err != nil {
						return api.OnResolveResult{}, err
					}
					return api.OnResolveResult{Path: out, External: true}, nil
				}
				return api.OnResolveResult{Path: args.Path, External: true}, nil
			})
		},
	}
}
