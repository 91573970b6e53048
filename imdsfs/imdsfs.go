package imdsfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hairyhenderson/go-ec2imds"
	"github.com/hairyhenderson/go-ec2imds/internal"
)

// Client is the part of the ec2imds client surface this filesystem needs.
// It is satisfied by *ec2imds.Client.
type Client interface {
	MetadataAt(ctx context.Context, path string) ([]byte, error)
	DynamicDataAt(ctx context.Context, path string) ([]byte, error)
	UserData(ctx context.Context) (data []byte, found bool, err error)
}

var _ Client = (*ec2imds.Client)(nil)

// withClienter is an fs.FS that can be configured to use the given
// metadata client.
type withClienter interface {
	WithClient(client Client) fs.FS
}

// WithClientFS overrides the metadata client used by fsys, if the
// filesystem supports it (i.e. has a WithClient method). This can be used
// for configuring specialized client options.
//
// Note that this should not be used together with a WithHTTPClient
// override. If you wish only to override the HTTP client, use
// WithHTTPClient alone.
func WithClientFS(client Client, fsys fs.FS) fs.FS {
	if fsys, ok := fsys.(withClienter); ok {
		return fsys.WithClient(client)
	}

	return fsys
}

type imdsFS struct {
	ctx        context.Context
	base       *url.URL
	httpclient *http.Client
	client     Client
	root       string
}

// New provides a filesystem (an fs.FS) backed by the EC2 instance metadata
// service, rooted at the given URL.
//
// A context can be given by using WithContextFS.
func New(u *url.URL) (fs.FS, error) {
	if u.Scheme != "ec2+imds" {
		return nil, fmt.Errorf("invalid URL scheme %q", u.Scheme)
	}

	root := strings.TrimPrefix(u.Path, "/")

	return &imdsFS{
		ctx:  context.Background(),
		base: u,
		root: root,
	}, nil
}

var (
	_ fs.FS                     = (*imdsFS)(nil)
	_ fs.ReadDirFS              = (*imdsFS)(nil)
	_ fs.SubFS                  = (*imdsFS)(nil)
	_ internal.WithContexter    = (*imdsFS)(nil)
	_ internal.WithHTTPClienter = (*imdsFS)(nil)
	_ withClienter              = (*imdsFS)(nil)
)

func (f imdsFS) URL() string {
	return f.base.String()
}

func (f *imdsFS) WithContext(ctx context.Context) fs.FS {
	if ctx == nil {
		return f
	}

	fsys := *f
	fsys.ctx = ctx

	return &fsys
}

func (f *imdsFS) WithHTTPClient(client *http.Client) fs.FS {
	if client == nil {
		return f
	}

	fsys := *f
	fsys.httpclient = client

	return &fsys
}

func (f *imdsFS) WithClient(client Client) fs.FS {
	if client == nil {
		return f
	}

	fsys := *f
	fsys.client = client

	return &fsys
}

func (f *imdsFS) getClient() Client {
	if f.client != nil {
		return f.client
	}

	opts := []ec2imds.Option{}
	if f.httpclient != nil {
		opts = append(opts, ec2imds.WithHTTPClient(f.httpclient))
	}

	// setting a host in the URL is only intended for test purposes
	if f.base.Host != "" {
		opts = append(opts, ec2imds.WithEndpoint("http://"+f.base.Host+"/latest/"))
	}

	f.client = ec2imds.New(opts...)

	return f.client
}

func (f *imdsFS) Sub(name string) (fs.FS, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "sub", Path: name, Err: fs.ErrInvalid}
	}

	if name == "." || name == "" {
		return f, nil
	}

	fsys := *f
	fsys.root = path.Join(fsys.root, name)

	return &fsys, nil
}

func (f *imdsFS) Open(name string) (fs.File, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}

	file := &imdsFile{
		ctx:    f.ctx,
		name:   strings.TrimPrefix(path.Base(name), "."),
		root:   strings.TrimPrefix(path.Join(f.root, path.Dir(name)), "."),
		client: f.getClient(),
	}

	if name == "." {
		file.fi = internal.DirInfo(file.name, time.Time{})
	}

	return file, nil
}

func (f *imdsFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !internal.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}

	dir := &imdsFile{
		ctx:    f.ctx,
		name:   name,
		root:   f.root,
		client: f.getClient(),
		fi:     internal.DirInfo(name, time.Time{}),
	}

	des, err := dir.ReadDir(-1)
	if err != nil {
		return nil, &fs.PathError{Op: "readDir", Path: name, Err: err}
	}

	return des, nil
}

// errIsDirectory is a copy of EISDIR for our purposes
var errIsDirectory = errors.New("is a directory")

type imdsFile struct {
	ctx    context.Context
	fi     fs.FileInfo
	client Client
	body   io.Reader
	name   string
	root   string

	children []*imdsFile
	diroff   int
}

var _ fs.ReadDirFile = (*imdsFile)(nil)

func (f *imdsFile) Close() error {
	return nil
}

func (f *imdsFile) Read(p []byte) (int, error) {
	if f.body == nil {
		err := f.getValue()
		if err != nil {
			return 0, &fs.PathError{Op: "read", Path: f.name, Err: err}
		}
	}

	if f.fi.IsDir() {
		return 0, fmt.Errorf("%w: %s", errIsDirectory, f.name)
	}

	return f.body.Read(p)
}

func (f *imdsFile) Stat() (fs.FileInfo, error) {
	if f.fi != nil {
		return f.fi, nil
	}

	err := f.getValue()
	if err != nil {
		return nil, &fs.PathError{Op: "stat", Path: f.name, Err: err}
	}

	return f.fi, nil
}

// convertClientError converts errors from the metadata client into errors
// suitable for returning from a filesystem.
func convertClientError(err error) error {
	if err == nil {
		return nil
	}

	var respErr *ec2imds.ResponseError
	if errors.As(err, &respErr) {
		switch respErr.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", fs.ErrNotExist, respErr.Status)
		default:
			return fmt.Errorf("%w: HTTP error %s", fs.ErrInvalid, respErr.Status)
		}
	}

	return err
}

// getValue fetches the value for this file from the metadata service and
// populates body and fi.
func (f *imdsFile) getValue() error {
	fullPath := path.Join(f.root, f.name)

	if isMetadataDirectory(fullPath) {
		f.fi = internal.DirInfo(f.name, time.Time{})

		return nil
	}

	var (
		b   []byte
		err error
	)

	if s, ok := strings.CutPrefix(fullPath, "meta-data"); ok {
		b, err = f.client.MetadataAt(f.ctx, strings.TrimPrefix(s, "/"))
	} else if s, ok := strings.CutPrefix(fullPath, "user-data"); ok && s == "" {
		b, err = f.getUserData()
	} else if s, ok := strings.CutPrefix(fullPath, "dynamic"); ok {
		b, err = f.client.DynamicDataAt(f.ctx, strings.TrimPrefix(s, "/"))
	} else {
		return &fs.PathError{
			Op:   "read",
			Path: f.name,
			Err:  fmt.Errorf("%w: invalid prefix for %q", fs.ErrNotExist, fullPath),
		}
	}

	if err != nil {
		return convertClientError(err)
	}

	f.fi = internal.FileInfo(f.name, int64(len(b)), 0o444, time.Time{})
	f.body = bytes.NewReader(b)

	return nil
}

func (f *imdsFile) getUserData() ([]byte, error) {
	b, found, err := f.client.UserData(f.ctx)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%w: no user data", fs.ErrNotExist)
	}

	return b, nil
}

// listPrefix returns the prefix for this directory
func (f *imdsFile) listPrefix() string {
	// when listing "." at the root (or opaque root), avoid returning "//"
	if f.name == "." && (f.root == "" || f.root == "/") {
		return f.root
	}

	return path.Join(f.root, f.name) + "/"
}

func (f *imdsFile) parseListOutput(b []byte) []string {
	prefix := f.listPrefix()

	children := []string{}

	for _, line := range strings.Split(string(b), "\n") {
		if line == "" {
			continue
		}

		children = append(children, prefix+line)
	}

	return children
}

func (f *imdsFile) list() error {
	fullPath := path.Join(f.root, f.name)

	if fullPath == "" || fullPath == "/" || fullPath == "." {
		return f.listRoot()
	}

	var (
		b   []byte
		err error
	)

	if s, ok := strings.CutPrefix(fullPath, "meta-data"); ok {
		b, err = f.client.MetadataAt(f.ctx, strings.Trim(s, "/"))
	} else if s, ok := strings.CutPrefix(fullPath, "dynamic"); ok {
		b, err = f.client.DynamicDataAt(f.ctx, strings.Trim(s, "/"))
	} else {
		return fmt.Errorf("%w: invalid prefix for %q", fs.ErrInvalid, fullPath)
	}

	if err != nil {
		return convertClientError(err)
	}

	return f.populateChildren(f.parseListOutput(b))
}

// special-case - the root directory can't be listed through the service,
// but the children are all known, so we can just hard-code them.
func (f *imdsFile) listRoot() error {
	fullPath := path.Join(f.root, f.name)

	// user data may be absent; even then it appears in the listing, with
	// a zero size
	var udFi fs.FileInfo

	ud, found, err := f.client.UserData(f.ctx)
	if err != nil {
		return fmt.Errorf("userData: %w", convertClientError(err))
	}

	if found {
		udFi = internal.FileInfo("user-data", int64(len(ud)), 0o444, time.Time{})
	} else {
		udFi = internal.FileInfo("user-data", 0, 0o444, time.Time{})
	}

	f.children = []*imdsFile{
		{
			ctx:    f.ctx,
			name:   "dynamic",
			root:   fullPath,
			client: f.client,
			fi:     internal.DirInfo("dynamic", time.Time{}),
		},
		{
			ctx:    f.ctx,
			name:   "meta-data",
			root:   fullPath,
			client: f.client,
			fi:     internal.DirInfo("meta-data", time.Time{}),
		},
		{
			ctx:    f.ctx,
			name:   "user-data",
			root:   fullPath,
			client: f.client,
			fi:     udFi,
		},
	}

	return nil
}

// populateChildren creates a list of children from the given list of
// names, sorts and assigns it to f.children
func (f *imdsFile) populateChildren(children []string) error {
	// track files that we've already seen - we don't want to add duplicates
	seen := map[string]struct{}{}

	for _, entry := range children {
		entry = strings.Trim(entry, "/")
		parts := strings.Split(entry, "/")
		name := parts[len(parts)-1]

		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		child := imdsFile{
			ctx:    f.ctx,
			name:   name,
			root:   path.Join(f.root, f.name),
			client: f.client,
		}

		fi, err := child.Stat()
		if err != nil {
			return err
		}

		child.fi = fi

		f.children = append(f.children, &child)
	}

	// the service doesn't sort the list of children, so we do it here
	sort.Slice(f.children, func(i, j int) bool {
		return f.children[i].name < f.children[j].name
	})

	return nil
}

// If n > 0, ReadDir returns at most n DirEntry structures.
// In this case, if ReadDir returns an empty slice, it will return
// a non-nil error explaining why.
// At the end of a directory, the error is io.EOF.
//
// If n <= 0, ReadDir returns all the DirEntry values from the directory
// in a single slice. In this case, if ReadDir succeeds (reads all the way
// to the end of the directory), it returns the slice and a nil error.
// If it encounters an error before the end of the directory,
// ReadDir returns the DirEntry list read until that point and a non-nil error.
func (f *imdsFile) ReadDir(n int) ([]fs.DirEntry, error) {
	if f.children == nil {
		if err := f.list(); err != nil {
			return nil, fmt.Errorf("list: %w", err)
		}
	}

	if n > 0 && f.diroff >= len(f.children) {
		return nil, io.EOF
	}

	low := f.diroff
	high := f.diroff + n

	// clamp high at the max, and ensure it's higher than low
	if high >= len(f.children) || high <= low {
		high = len(f.children)
	}

	entries := make([]fs.DirEntry, high-low)
	for i := low; i < high; i++ {
		entries[i-low] = internal.FileInfoDirEntry(f.children[i].fi)
	}

	f.diroff = high

	return entries, nil
}
