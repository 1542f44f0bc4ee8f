package config

// Loader 将配置源解码到目标结构体
type Loader interface {
	Load(target any) error
	// Watch 在配置源变化时调用 callback
	Watch(callback func()) error
}
