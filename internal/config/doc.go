// Package config defines the format-agnostic configuration model for the
// service, along with the Loader and Body interfaces that concrete formats
// implement.
//
// `config.Model` is what the app wires from: logging, registry retention,
// the HTTP listener and the list of event sources. Source blocks stay
// undecoded until the factory registered for their type asks for its own
// settings. The HCL implementation lives in the hcl_adapter package.
package config
