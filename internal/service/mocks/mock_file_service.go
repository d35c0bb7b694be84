package mocks

import (
	"context"
	"io"

	"catbox/internal/model"
	"catbox/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, ownerID, originalName string, r io.Reader, size int64, contentType string) (*model.FileRecord, error) {
	args := m.Called(ctx, ownerID, originalName, r, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileRecord), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID string) ([]model.FileRecord, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileRecord), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, ownerID, id string) (*service.Blob, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Blob), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockFileService) ResolvePublic(ctx context.Context, storedName string) (*service.Blob, error) {
	args := m.Called(ctx, storedName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Blob), args.Error(1)
}

func (m *MockFileService) PublicURL(storedName string) string {
	return "http://localhost:8080/f/" + storedName
}
