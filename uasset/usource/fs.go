package usource

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FsProvider opens files from an afero filesystem. Opened files stay open
// until Close, since serialized files are read lazily object by object.
type FsProvider struct {
	fs     afero.Fs
	opened []afero.File
}

func NewFsProvider(fs afero.Fs) *FsProvider {
	return &FsProvider{fs: fs}
}

func NewOsProvider() *FsProvider {
	return NewFsProvider(afero.NewOsFs())
}

func (p *FsProvider) Open(path string) (RangeReader, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, errors.Wrap(err, "FsProvider.Open error")
	}
	file, err := p.fs.Open(expanded)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, errors.Errorf(`FsProvider.Open error: "%s" is a directory`, expanded)
	}
	p.opened = append(p.opened, file)
	return ReaderAt{
		R:    file,
		Len:  info.Size(),
		Name: expanded,
	}, nil
}

func (p *FsProvider) List(dir string) ([]string, error) {
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, errors.Wrap(err, "FsProvider.List error")
	}
	paths := make([]string, 0)
	err = afero.Walk(
		p.fs, expanded,
		func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.Mode().IsRegular() {
				paths = append(paths, filepath.ToSlash(path))
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

func (p *FsProvider) Close() error {
	var firstErr error
	for _, file := range p.opened {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.opened = nil
	return firstErr
}
