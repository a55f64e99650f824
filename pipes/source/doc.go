// Package source provides the built-in entry pipes: Noise, a seeded
// synthetic recording, and Stream, a live source fed in-process.
//
// Both cut the signal into windows of win_len seconds every win_disp
// seconds. With n_sample samples the number of windows is
//
//	(n_sample - n_win_len) / n_win_disp + 1
//
// where n_win_len and n_win_disp are the window length and displacement in
// samples.
package source
