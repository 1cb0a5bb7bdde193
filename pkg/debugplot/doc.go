// Package debugplot records values from anywhere in a program and keeps a
// chart of them up to date, either as an image file or in a live window.
//
// A call site records one invocation worth of samples:
//
//	debugplot.Plot(debugplot.Config{Caption: "Trigonometry", XDesc: "x"},
//		debugplot.XY("sin_x", x, math.Sin(x)).As("sin(x)"),
//		debugplot.XY("cos_x", x, math.Cos(x)).As("cos(x)"),
//	)
//
// Every distinct plot identity (caption, else path, else call site) owns one
// entry in a process-wide registry. Each series keeps at most Capacity
// samples; older samples are evicted first. Samples without an explicit x
// share the plot's invocation counter as x.
//
// The first invocation for an identity fixes its configuration. Later
// invocations with different settings are ignored and logged once.
//
// File plots are rewritten on every update by default. Live plots are drawn
// by a background task per plot that only ever draws the newest state; when
// their window closes, the plot falls back to file output. Nothing in this
// package panics or returns errors to the instrumented code: failures are
// logged through logrus.
//
// Building with -tags noplot, or running with DEBUGPLOT=0, turns Plot into a
// no-op. PlotAlways ignores both switches.
package debugplot
