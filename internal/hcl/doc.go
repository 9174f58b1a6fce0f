// Package hcl provides the concrete HCL implementation of the run-request
// loader defined in the `config` package. It is responsible for file
// parsing, HCL-to-model translation and CTY-to-Go data binding for the
// free-form INCAR override blocks.
package hcl
