package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeKey(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"plain", "ada.pdf", "resumes/s1/ada.pdf"},
		{"strips directories", "../../etc/ada.pdf", "resumes/s1/ada.pdf"},
		{"windows path", `C:\Users\ada\cv.pdf`, "resumes/s1/cv.pdf"},
		{"empty", "", "resumes/s1/resume.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResumeKey("s1", tt.filename))
		})
	}
}

func TestGenerateDownloadURL_Presigns(t *testing.T) {
	client, err := NewS3Client(context.Background(), S3ClientConfig{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Bucket:          "resumes",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	url, err := client.GenerateDownloadURL(context.Background(), "resumes/s1/ada.pdf")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:9000/resumes/resumes/s1/ada.pdf?"), url)
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=3600")
}
