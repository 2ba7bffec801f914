package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const reportBucket = "conexx-reports"

// ReportArchiveService stores the JSON payload of every generated report so a
// send can be audited after the push notification is gone.
type ReportArchiveService interface {
	ArchiveReport(ctx context.Context, tenantID uuid.UUID, kind string, payload []byte) (string, error)
	GetPresignedURL(objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
}

type reportArchiveService struct {
	client *minio.Client
}

func NewReportArchiveService(endpoint, accessKey, secretKey string, useSSL bool) (ReportArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &reportArchiveService{client: client}, nil
}

// ArchiveReport writes the payload under {tenant}/{kind}/{date}.json and
// returns the object name.
func (m *reportArchiveService) ArchiveReport(ctx context.Context, tenantID uuid.UUID, kind string, payload []byte) (string, error) {
	objectName := fmt.Sprintf("%s/%s/%s.json", tenantID.String(), kind, time.Now().Format("2006-01-02"))
	_, err := m.client.PutObject(ctx, reportBucket, objectName, bytes.NewReader(payload), int64(len(payload)),
		minio.PutObjectOptions{
			ContentType: "application/json",
		})
	if err != nil {
		return "", err
	}
	return objectName, nil
}

func (m *reportArchiveService) GetPresignedURL(objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), reportBucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *reportArchiveService) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, reportBucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, reportBucket, minio.MakeBucketOptions{})
	}
	return nil
}
