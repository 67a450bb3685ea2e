/*
Copyright © 2020 the EventRisk authors.
This file is part of EventRisk.

EventRisk is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EventRisk is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EventRisk.  If not, see <http://www.gnu.org/licenses/>.
*/

package riskutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maxCacheAge is how long a downloaded file in the cache directory is
// reused before it is downloaded again. The case and reproduction number
// data are updated daily.
const maxCacheAge = 12 * time.Hour

// maxRetryTime limits how long a failing download is retried.
const maxRetryTime = 2 * time.Minute

// downloader fetches input files that are not on the local file system.
type downloader struct {
	// CacheDir is the directory downloaded files are kept in. If it
	// is empty, each file is downloaded to a new temporary directory.
	CacheDir string

	Client *http.Client
	Log    logrus.FieldLogger
}

// maybeDownload checks if the input is an existing file locally.
// If not, it checks whether the file is a URL or blob and, if so,
// downloads it and returns the path to the downloaded file.
func (d *downloader) maybeDownload(ctx context.Context, p string) (string, error) {
	p = os.ExpandEnv(p)
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	switch {
	case strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://"):
		return d.downloadHTTP(ctx, p)
	case IsBlob(p):
		return d.downloadBlob(ctx, p)
	}
	return "", fmt.Errorf("eventrisk: input file %s does not exist", p)
}

// destination returns the local path that the file at rawurl should be
// downloaded to, and whether a recent copy already exists there.
func (d *downloader) destination(rawurl string) (string, bool, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", false, fmt.Errorf("eventrisk: %v", err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = u.Host
	}
	dir := d.CacheDir
	if dir == "" {
		dir, err = ioutil.TempDir("", "eventrisk")
		if err != nil {
			return "", false, fmt.Errorf("eventrisk: failed creating temporary download directory: %v", err)
		}
	} else if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", false, fmt.Errorf("eventrisk: creating cache directory: %v", err)
	}
	f := filepath.Join(dir, name)
	if d.CacheDir != "" {
		if fi, err := os.Stat(f); err == nil && time.Since(fi.ModTime()) < maxCacheAge {
			return f, true, nil
		}
	}
	return f, false, nil
}

// downloadHTTP downloads a file from the specified URL, retrying when
// the server cannot be reached or responds with a server error.
func (d *downloader) downloadHTTP(ctx context.Context, rawurl string) (string, error) {
	f, cached, err := d.destination(rawurl)
	if err != nil {
		return "", err
	}
	log := d.Log.WithField("url", rawurl)
	if cached {
		log.WithField("file", f).Debug("using cached download")
		return f, nil
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	// Errors that retrying will not fix are kept here and the retry loop
	// is stopped.
	var permanent error
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxRetryTime
	err = backoff.RetryNotify(
		func() error {
			req, err := http.NewRequest("GET", rawurl, nil)
			if err != nil {
				permanent = err
				return nil
			}
			resp, err := client.Do(req.WithContext(ctx))
			if err != nil {
				if ctx.Err() != nil {
					permanent = ctx.Err()
					return nil
				}
				return err
			}
			defer resp.Body.Close()
			switch {
			case resp.StatusCode >= 500:
				return fmt.Errorf("eventrisk: downloading %s: %s", rawurl, resp.Status)
			case resp.StatusCode != http.StatusOK:
				permanent = fmt.Errorf("eventrisk: downloading %s: %s", rawurl, resp.Status)
				return nil
			}
			return writeFile(f, resp.Body)
		},
		backoff.WithContext(b, ctx),
		func(err error, wait time.Duration) {
			log.WithError(err).Warnf("download failed; retrying in %v", wait)
		},
	)
	if err == nil {
		err = permanent
	}
	if err != nil {
		return "", err
	}
	log.WithField("file", f).Info("downloaded")
	return f, nil
}

// writeFile copies r to a new file at path, leaving no partial file
// behind on failure.
func writeFile(path string, r io.Reader) error {
	tmp := path + ".part"
	w, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("eventrisk: failed creating file for download: %v", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		os.Remove(tmp)
		return fmt.Errorf("eventrisk: download interrupted: %v", err)
	}
	if err := w.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for the local filesystem
// (e.g., for testing), "gs" for Google Cloud Storage, and "s3" for AWS S3.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("eventrisk: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(u.Hostname())
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("eventrisk: invalid storage provider %s", u.Scheme)
	}
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func (d *downloader) downloadBlob(ctx context.Context, rawurl string) (string, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return "", fmt.Errorf("eventrisk: %v", err)
	}
	f, cached, err := d.destination(rawurl)
	if err != nil {
		return "", err
	}
	if cached {
		return f, nil
	}
	bucket, err := OpenBucket(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		return "", err
	}
	r, err := bucket.NewReader(ctx, strings.TrimPrefix(u.Path, "/"))
	if err != nil {
		return "", fmt.Errorf("eventrisk: reading %s: %v", rawurl, err)
	}
	defer r.Close()
	if err := writeFile(f, r); err != nil {
		return "", err
	}
	d.Log.WithFields(logrus.Fields{"url": rawurl, "file": f}).Info("downloaded")
	return f, nil
}
