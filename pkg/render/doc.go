// Package render turns a bound creative into deliverable pixels.
//
// # Overview
//
// The pipeline has four stages:
//
//   - [Materialize]: template plus value snapshot in, one self-contained
//     HTML document out. Every style and binary is inlined; nothing in
//     the output references the editor or the network.
//   - [Rasterizer]: the document is shot at its authored 320x480 size by
//     a headless browser. The interface hides the browser binary so
//     tests can substitute a stub.
//   - [Rescale]: the base shot is fitted into each export size. Empty
//     bands are never left blank; a blurred, cover-scaled copy of the
//     shot itself fills the background. Exported media amplify the blur
//     intensity; [RescalePreview] renders it as set.
//   - [Muxer]: for video exports, the still is muxed with the session's
//     background audio using an external ffmpeg binary.
//
// # Typical use
//
//	doc, err := render.Materialize(tmpl, snapshot)
//	img, err := rast.Rasterize(ctx, doc.HTML, render.BaseWidth, render.BaseHeight, 2.0)
//	out := render.Rescale(ctx, img, 1200, 1500, render.DefaultBlurIntensity)
//
// Rasterization is the expensive stage; wrap a [Rasterizer] with
// [NewCachedRasterizer] to reuse shots across export sizes and runs.
package render
