package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"github.com/adforge/adforge/pkg/binding"
	"github.com/adforge/adforge/pkg/errors"
	"github.com/adforge/adforge/pkg/export"
	"github.com/adforge/adforge/pkg/render"
)

// renderCommand creates the render command, which shoots a single
// template and writes one PNG per export size to disk.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		outDir string
		lang   string
		sets   []string
		blur   float64
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to PNGs in every export size",
		Long: `Render binds the template's default values (plus any --set overrides),
shoots it with headless Chromium, and writes one PNG per export size
to the output directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}

			engine := binding.NewEngine(c.newLoader(cfg.Templates))
			if err := engine.Load(ctx, args[0]); err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return errors.New(errors.ErrCodeInvalidInput, "--set wants field=value, got %q", kv)
				}
				if err := engine.Set(ctx, name, value); err != nil {
					return err
				}
			}

			snapshot, err := engine.Snapshot()
			if err != nil {
				return err
			}

			if lang != "" && lang != cfg.Translate.SourceLang {
				sp := newSpinnerWithContext(ctx, fmt.Sprintf("Translating copy to %s", lang))
				sp.Start()
				res, terr := c.newTranslator(ctx, cfg).TranslateFields(ctx, snapshot, cfg.Translate.SourceLang, lang)
				sp.Stop()
				if terr != nil {
					return terr
				}
				if res.AllUnchanged() {
					printWarning("No field could be translated, rendering source copy")
				}
				snapshot = res.Values
			}

			doc, err := render.Materialize(engine.Template(), snapshot)
			if err != nil {
				return err
			}

			rast := render.NewCachedRasterizer(
				&render.ChromeRasterizer{Binary: cfg.Render.ChromiumBinary},
				c.newCache(ctx, cfg.Cache), nil, cfg.Cache.TTL(),
			)
			scale := cfg.Render.ShotScale
			if scale <= 0 {
				scale = export.DefaultShotScale
			}
			sp := newSpinnerWithContext(ctx, "Shooting with headless Chromium")
			sp.Start()
			p := newProgress(loggerFromContext(ctx))
			shot, err := rast.Rasterize(ctx, doc.HTML, render.BaseWidth, render.BaseHeight, scale)
			sp.Stop()
			if err != nil {
				return err
			}
			p.done("Captured screenshot")

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeFileNotFound, err, "creating output directory")
			}
			if blur <= 0 {
				blur = cfg.Render.BlurIntensity
			}
			for _, size := range export.Sizes {
				img := render.Rescale(ctx, shot, size.Width, size.Height, blur)
				path := filepath.Join(outDir, fmt.Sprintf("%s_%s.png", args[0], size))
				if err := imaging.Save(img, path); err != nil {
					return errors.Wrap(errors.ErrCodeEncode, err, "saving %s", path)
				}
				printFile(path)
			}
			printSuccess("Rendered %s in %d sizes", args[0], len(export.Sizes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	cmd.Flags().StringVar(&lang, "lang", "", "translate copy to this language before rendering")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "override a field value (field=value, repeatable)")
	cmd.Flags().Float64Var(&blur, "blur", 0, "background blur intensity (0 uses config)")
	return cmd
}
