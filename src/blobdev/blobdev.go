package blobdev

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudnews/cloudnews/src/config"
	"github.com/cloudnews/cloudnews/src/jobs"
	"github.com/cloudnews/cloudnews/src/logging"
	"github.com/cloudnews/cloudnews/src/website"
	"github.com/spf13/cobra"
)

/*
A tiny S3-alike for local development, storing blobs in the filesystem. It
implements just enough of the S3 protocol for the asset store to work
against it: PUT and DELETE of objects, GET with a NoSuchKey error body, and
bucket creation.
*/

func init() {
	blobdevCommand := &cobra.Command{
		Use:   "blobdev [storage folder]",
		Short: "Run a local blob server that stores in the filesystem",
		Run: func(cmd *cobra.Command, args []string) {
			targetFolder := "./tmp/blobs"
			if len(args) > 0 {
				targetFolder = args[0]
			}

			job := StartServer(targetFolder)
			<-job.Finished()
		},
	}

	website.WebsiteCommand.AddCommand(blobdevCommand)
}

func StartServer(targetFolder string) *jobs.Job {
	job := jobs.New("blobdev")

	err := os.MkdirAll(targetFolder, fs.ModePerm)
	if err != nil {
		panic(err)
	}

	addr, err := url.Parse(config.Config.Storage.Endpoint)
	if err != nil {
		panic(err)
	}

	srv := &http.Server{
		Addr:    addr.Host,
		Handler: http.HandlerFunc(handleBlobRequest(targetFolder)),
	}

	go func() {
		<-job.Canceled()
		srv.Close()
	}()
	go func() {
		defer job.Finish()
		job.Logger.Info().Str("addr", srv.Addr).Str("folder", targetFolder).Msg("Serving local blobs")
		serverErr := srv.ListenAndServe()
		if !errors.Is(serverErr, http.ErrServerClosed) {
			job.Logger.Error().Err(serverErr).Msg("Blob server shut down unexpectedly")
		}
	}()

	return job
}

func handleBlobRequest(targetFolder string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bucket, key := bucketKey(r)
		blobPath := filepath.Join(targetFolder, bucket, key)

		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				panic(err)
			}
			w.Header().Set("Location", fmt.Sprintf("/%s", bucket))
			err = os.MkdirAll(filepath.Join(targetFolder, bucket), fs.ModePerm)
			if err != nil {
				panic(err)
			}
			if key != "" {
				err = os.WriteFile(blobPath, body, fs.ModePerm)
				if err != nil {
					panic(err)
				}
			}
		case http.MethodGet:
			fileBytes, err := os.ReadFile(blobPath)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					writeS3Error(w, http.StatusNotFound, "NoSuchKey", "The specified key does not exist.")
					return
				}
				panic(err)
			}
			w.Write(fileBytes)
		case http.MethodDelete:
			err := os.Remove(blobPath)
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				panic(err)
			}
			// Deleting a missing object succeeds, like real S3.
			w.WriteHeader(http.StatusNoContent)
		default:
			logging.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("unimplemented blob method")
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func writeS3Error(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>%s</Code><Message>%s</Message></Error>`, code, message)
}

func bucketKey(r *http.Request) (string, string) {
	slashIdx := strings.IndexByte(r.URL.Path[1:], '/')
	if slashIdx == -1 {
		return r.URL.Path[1:], ""
	} else {
		return r.URL.Path[1 : 1+slashIdx], strings.Replace(r.URL.Path[2+slashIdx:], "/", "~", -1)
	}
}
