package diffusion

import "errors"

// ErrInvalidArgument indicates a physically meaningless input such as a
// non-positive diameter, viscosity, temperature or dimension count. All
// validation failures in this package wrap it.
var ErrInvalidArgument = errors.New("diffusion: invalid argument")
