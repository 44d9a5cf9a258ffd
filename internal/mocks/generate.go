// Package mocks provides gomock (go.uber.org/mock) mocks of the server's
// outbound ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	prov := mocks.NewMockProfileProvisioner(ctrl)
//	prov.EXPECT().Create(gomock.Any(), id, email).Return(nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_provisioner_mock.go github.com/dmitrijs2005/gophauth/internal/server/provisioning ProfileProvisioner

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=reconciliation_sink_mock.go github.com/dmitrijs2005/gophauth/internal/server/reconciliation Sink

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=object_putter_mock.go github.com/dmitrijs2005/gophauth/internal/server/reconciliation ObjectPutter
