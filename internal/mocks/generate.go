// Package mocks provides mock implementations for testing the edge server.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the core port interfaces. The mocks are generated using go:generate
// directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	runner := mocks.NewMockWorkerRunner(ctrl)
//	runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

// Generate mock for WorkerRunner interface from internal/core package.
// This creates MockWorkerRunner with the Run method.
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=worker_runner_mock.go github.com/ekefan/afitlms/internal/core WorkerRunner
