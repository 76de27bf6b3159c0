package internal

// BuildTime identifies the running build. It is set at link time:
//
//	go build -ldflags "-X github.com/red2n/opentele/servicex/internal.BuildTime=20260101120000"
var BuildTime = "dev"
