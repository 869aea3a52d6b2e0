package build_info

// Set with -ldflags "-X github.com/veesr/escrow/src/utils/build_info.Version=..."
var Version = "dev"
