package modkit

import "grantwise/internal/modkit/module"

// Module is the surface every API module satisfies
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
