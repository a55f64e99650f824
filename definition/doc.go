// Package definition parses pipeline definitions and turns them into
// validated, configured chains of pipe instances.
//
// A definition is an ordered list of [identifier, parameters] pairs:
//
//	[
//	  ["source.Noise", {"duration": 10, "sample_rate": 100, "win_len": 1, "win_disp": 0.5}],
//	  ["adjacency.Correlation", {"pipe_name": "corr", "cache": true}],
//	  ["netviz.Console", {}]
//	]
//
// The keys pipe_name, cache and required are reserved: they configure the
// stage rather than the pipe and are stripped before Configure is called.
package definition
