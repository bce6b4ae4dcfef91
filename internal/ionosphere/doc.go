// Package ionosphere acquires the time series of ionospheric rotation-measure
// values for an observation.
//
// The time-dependent Faraday rotation model itself is computed outside frion
// by RMextract; this package only consumes its output through one of three
// Source implementations selected by New(config.IonosphereConfig):
//   - file — a two-column text dump (<time> <rm_rad_m2>) saved next to the
//     observation; '#' comments and blank lines are ignored
//   - exec — an external driver script run per request, printing the same
//     two-column format on stdout; argv placeholders ({start}, {ra}, ...)
//     are replaced with the request values
//   - http — a prediction service returning {"samples":[{"mjd","rm"},...]},
//     with mtls/apikey/bearer/basic authentication
//
// Timestamps are accepted as MJD days, MJD seconds or RFC 3339. Every source
// trims its result to the request window and validates the series (non-empty,
// strictly increasing, finite RM values) before returning it.
package ionosphere
