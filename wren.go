// Package wren resolves the npm packages, JavaScript modules, HTML imports
// and theme a Vaadin application needs by walking its compiled classes.
package wren

// Version is the wren release.
const Version = "0.1.0"
