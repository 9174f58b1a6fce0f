// Package config defines the format-agnostic run-request model for the
// application, along with the Loader interface for reading it from a
// concrete syntax.
//
// The config.Model is the single source of truth for the app and workflow
// packages. Concrete loaders, such as the HCL one, live in separate
// packages.
package config
