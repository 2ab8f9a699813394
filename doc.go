// Package unmagic renders "magic-eye" style depth illusions by compositing an
// image with an offset, difference-blended copy of itself.
//
// The package is split into three pieces that the viewer and the headless
// renderer both build on:
//
//   - [Params] and the normalization constants ([OffsetMag], [SlantMag],
//     [StretchMag]) that turn control values into a resolution-independent
//     ghost transform.
//   - The [Compositor], which draws one of three [RenderState] variants onto
//     any [Canvas]. [RasterCanvas] is the CPU implementation; the ebitencanvas
//     subpackage provides a GPU one for Ebitengine.
//   - The [Oscillator] and [Controller], which animate the offset with a sine
//     wave on a [FrameScheduler] and notify subscribers when parameters change.
//
// # Quick start
//
//	sched := &unmagic.FrameScheduler{}
//	ctrl := unmagic.NewController(sched, unmagic.SystemClock{})
//	ctrl.SetImage(img)
//
//	canvas := unmagic.NewRasterCanvas(640, 480)
//	comp := unmagic.NewCompositor(unmagic.DefaultPalette())
//	for range 60 {
//		sched.Advance()
//		comp.Render(canvas, ctrl.Snapshot().State())
//	}
//
// # Ghost transform
//
// With n = offset * offsetMagnitude / OffsetMag, the second pass is scaled by
// (1 + stretch/StretchMag * |n|, 1) and translated by (n * width,
// slant/SlantMag * n * height) about the canvas centre. Where the two layers
// coincide the difference blend is black; where they diverge colour fringes
// appear, which the eye reads as depth.
package unmagic
