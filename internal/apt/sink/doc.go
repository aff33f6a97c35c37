// Package sink defines where analysis results go: named tables with a
// declared column schema, point clouds, voxel surfaces and free-text
// blocks. Renderers and stores implement ResultSink; the analysis core only
// produces values.
package sink
