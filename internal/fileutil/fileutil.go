package fileutil

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrFingerprintMismatch indicates a verified copy did not reproduce the
// source bytes. Callers may retry; the corrupt destination is already gone.
var ErrFingerprintMismatch = errors.New("fingerprint mismatch")

// HashFile computes the SHA-256 fingerprint of a file's full byte content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified streams src to dst with SHA-256 + size integrity
// verification, returning the content fingerprint on success. Removes dst on
// mismatch so a corrupt partial never survives.
func CopyFileVerified(src, dst string) (string, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: source %d bytes, copied %d bytes", ErrFingerprintMismatch, srcSize, written)
	}

	srcSum := srcHasher.Sum(nil)
	if !bytes.Equal(srcSum, dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return "", fmt.Errorf("%w: file corrupted during copy", ErrFingerprintMismatch)
	}

	return hex.EncodeToString(srcSum), nil
}

// SameVolume reports whether two paths live on the same device, so a move can
// use an atomic rename instead of copy-verify-delete. The destination and any
// number of its parent directories may not exist yet; the nearest existing
// ancestor decides, since MkdirAll later creates the missing ones on that
// same device.
func SameVolume(src, dst string) (bool, error) {
	var srcStat unix.Stat_t
	if err := unix.Stat(src, &srcStat); err != nil {
		return false, fmt.Errorf("stat %s: %w", src, err)
	}

	probe := dst
	var dstStat unix.Stat_t
	for {
		err := unix.Stat(probe, &dstStat)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.ENOENT) && !errors.Is(err, unix.ENOTDIR) {
			return false, fmt.Errorf("stat %s: %w", probe, err)
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			return false, fmt.Errorf("stat %s: %w", dst, err)
		}
		probe = parent
	}
	return srcStat.Dev == dstStat.Dev, nil
}

// TempSibling returns the temporary staging path used while copying toward
// dst. Keeping the temporary in the destination directory guarantees the
// final rename is atomic.
func TempSibling(dst string) string {
	dir := filepath.Dir(dst)
	base := filepath.Base(dst)
	return filepath.Join(dir, "."+base+".mediasort-partial")
}
