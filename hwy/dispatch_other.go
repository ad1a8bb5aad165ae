//go:build !amd64 && !arm64

package hwy

func init() {
	// Other architectures use the scalar level with 16-byte vectors,
	// so kernels keep the same lane layout as SSE2/NEON.
	setLevel(DispatchScalar)
}
