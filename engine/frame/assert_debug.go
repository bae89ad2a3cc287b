//go:build !release

package frame

const assertionsEnabled = true
