package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/archmap-dev/archmap/internal/fileutil"
	"github.com/archmap-dev/archmap/internal/languages"
	"github.com/archmap-dev/archmap/internal/layout"
	"github.com/archmap-dev/archmap/internal/lsp"
	"github.com/archmap-dev/archmap/internal/model"
	"github.com/archmap-dev/archmap/internal/pipeline"
	"github.com/archmap-dev/archmap/internal/source"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}

	registry := languages.NewDefaultRegistry()
	endings, _ := cmd.Flags().GetStringSlice("endings")
	if len(endings) == 0 {
		endings = registry.SupportedExtensions()
	}
	endings = fileutil.DedupeStrings(endings)

	languageID, _ := cmd.Flags().GetString("lang")
	loc := source.ProjectLocation{
		FolderPath:      path,
		CodeFileEndings: endings,
		LanguageID:      languageID,
	}

	logger := newLogger()
	provider, err := buildProvider(cmd, registry, loc, logger)
	if err != nil {
		return err
	}

	focus, _ := cmd.Flags().GetString("focus")
	filter := layout.ShowAll
	if focus != "" {
		filter = func(a *model.Artifact) bool {
			return strings.Contains(strings.ToLower(a.Name), strings.ToLower(focus))
		}
	}

	controller := pipeline.New(loc, source.NewReader(), provider, pipeline.Options{
		Logger: logger,
		Layout: layoutConstants(),
		Filter: filter,
		Width:  viper.GetFloat64(viewWidthKey),
		Height: viper.GetFloat64(viewHeightKey),
	})

	states, cancel := controller.Subscribe()
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for state := range states {
			if state.Phase == pipeline.PhaseRetrievingData || state.Phase == pipeline.PhaseAnalyzing {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", state.Phase, state.Step)
			}
		}
	}()

	result, runErr := controller.Run(cmd.Context())
	cancel()
	<-done
	if runErr != nil {
		return runErr
	}

	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	return writeResult(cmd, result, format, out)
}

func buildProvider(cmd *cobra.Command, registry *languages.Registry, loc source.ProjectLocation, logger *slog.Logger) (pipeline.Provider, error) {
	inner, err := languages.NewProvider(registry, logger)
	if err != nil {
		return nil, err
	}

	useLsp, _ := cmd.Flags().GetBool("lsp")
	if !useLsp {
		return inner, nil
	}
	server, ok := lsp.ServerForLanguage(loc.LanguageID)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "no language server known for %q, using name resolution\n", loc.LanguageID)
		return inner, nil
	}
	return lsp.NewProvider(inner, lsp.NewClient(loc.FolderPath, server), logger), nil
}
