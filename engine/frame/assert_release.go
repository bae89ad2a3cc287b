//go:build release

package frame

const assertionsEnabled = false
