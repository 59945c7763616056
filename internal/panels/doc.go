// Package panels turns segmented regions into panel images and hands them
// to a Writer.
//
// Each surviving region is cropped from the original page at its
// caption-expanded box and emitted as a Panel carrying a positional index.
// By default the index is the region's place in reading order before small
// regions were dropped, so panel numbers can skip. With renumbering enabled
// the emitted panels are numbered 1..n.
//
// # Writers
//
// FileWriter saves each panel as "<base>_panel_<index>.<ext>" in a directory
// it creates on first use. MemoryWriter keeps panels in memory.
//
// # Failure Handling
//
// A panel that fails to write does not stop the export. Every failure is
// logged and recorded in the Report, and the error returned by Export joins
// all of them.
package panels
