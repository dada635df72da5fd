// Package requests turns declarative request specs into ready-to-dispatch
// descriptors.
//
// It provides functionality for:
//   - Decoding specs from YAML or JSON (bare URL strings or full objects)
//   - Validating URL schemes, HTTP methods and output destinations
//   - Expanding one spec into one descriptor per parameter set
//   - Discovering implicit requests declared in artifact front matter
//   - The closed set of error kinds raised by normalization, dispatch and routing
//
// Destinations are resolved once, at normalization time, into a tagged
// Destination so routing never has to inspect raw configuration again.
package requests
