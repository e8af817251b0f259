//go:build !linux && !darwin

package quota

func statfsFree(string) (uint64, error) {
	return 0, ErrUnavailable
}
