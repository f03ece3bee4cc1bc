package config

// 构建信息，由 -ldflags 在发布构建时注入
var (
	Version    = "dev"
	CommitHash = ""
)

// IsProduction 发布构建：Version 为 "release" 且注入了提交哈希
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// IsDevelopment 本地开发构建
func IsDevelopment() bool {
	return Version == "dev"
}
