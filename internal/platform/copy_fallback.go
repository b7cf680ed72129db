//go:build !linux

package platform

// CopyFile falls back to read/write on platforms without a kernel-side copy path.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	preallocate(params.DstFd, params.SrcSize)
	return copyReadWrite(params)
}
