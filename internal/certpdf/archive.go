package certpdf

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Archive collects rendered files into a zip.
type Archive struct {
	file *os.File
	zw   *zip.Writer
}

func CreateArchive(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	return &Archive{file: f, zw: zip.NewWriter(f)}, nil
}

// Add stores the output of write under name, a slash-separated path.
func (a *Archive) Add(name string, write func(w io.Writer) error) error {
	w, err := a.zw.Create(name)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if err := write(w); err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	return nil
}

func (a *Archive) Close() error {
	if err := a.zw.Close(); err != nil {
		a.file.Close()
		return fmt.Errorf("close archive: %w", err)
	}
	return a.file.Close()
}

// ClusterDir is the archive folder of a cluster, e.g. "clusters/cluster_07".
func ClusterDir(cluster string) string {
	return "clusters/cluster_" + pad2(cluster)
}

// ClusterTemplate is the template file name for a cluster, e.g. "cluster_07_certificate.jpg".
func ClusterTemplate(dir, cluster string) string {
	return filepath.Join(dir, "cluster_"+pad2(cluster)+"_certificate.jpg")
}

func pad2(s string) string {
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return "0" + s
	}
	return s
}
