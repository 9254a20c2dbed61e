package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nacos-group/nacos-sdk-go/v2/clients"
	"github.com/nacos-group/nacos-sdk-go/v2/clients/config_client"
	"github.com/nacos-group/nacos-sdk-go/v2/common/constant"
	"github.com/nacos-group/nacos-sdk-go/v2/vo"
	"github.com/spf13/viper"
)

// Mode 配置来源
type Mode string

const (
	// ModeLocal 本地 YAML 文件
	ModeLocal Mode = "local"
	// ModeNacos Nacos 配置中心
	ModeNacos Mode = "nacos"
)

// NacosConfig Nacos 连接参数，从本地引导文件的 nacos 节读取
type NacosConfig struct {
	ServerAddr string `mapstructure:"server_addr" yaml:"server_addr"`
	ServerPort uint64 `mapstructure:"server_port" yaml:"server_port"`
	Namespace  string `mapstructure:"namespace" yaml:"namespace"`
	Group      string `mapstructure:"group" yaml:"group"`
	DataID     string `mapstructure:"data_id" yaml:"data_id"`
	Username   string `mapstructure:"username" yaml:"username"`
	Password   string `mapstructure:"password" yaml:"password"`
	LogDir     string `mapstructure:"log_dir" yaml:"log_dir"`
	CacheDir   string `mapstructure:"cache_dir" yaml:"cache_dir"`
	LogLevel   string `mapstructure:"log_level" yaml:"log_level"`
	TimeoutMs  uint64 `mapstructure:"timeout_ms" yaml:"timeout_ms"`
}

// Manager 按 CONFIG_MODE 从本地文件或 Nacos 加载配置，
// Nacos 模式下监听变更并热加载
type Manager struct {
	mode        Mode
	nacosClient config_client.IConfigClient
	nacosConfig *NacosConfig
	viper       *viper.Viper
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	return &Manager{
		viper: viper.New(),
	}
}

// LoadConfig 加载配置
// configPath 为本地配置文件路径，Nacos 模式下作为连接引导文件；
// serviceName 用作默认的 Nacos DataID 前缀
func (m *Manager) LoadConfig(configPath, serviceName string) error {
	mode := strings.ToLower(os.Getenv("CONFIG_MODE"))
	if mode == "" {
		mode = string(ModeLocal)
	}
	m.mode = Mode(mode)

	switch m.mode {
	case ModeNacos:
		return m.loadFromNacos(configPath, serviceName)
	case ModeLocal:
		return m.loadFromLocal(configPath)
	default:
		return fmt.Errorf("unsupported config mode: %s", mode)
	}
}

func (m *Manager) loadFromLocal(configPath string) error {
	m.viper.SetConfigFile(configPath)
	if err := m.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("read local config: %w", err)
	}
	return nil
}

func (m *Manager) loadFromNacos(configPath, serviceName string) error {
	bootstrap := viper.New()
	bootstrap.SetConfigFile(configPath)
	if err := bootstrap.ReadInConfig(); err != nil {
		return fmt.Errorf("read nacos bootstrap config: %w", err)
	}

	nc := &NacosConfig{}
	if err := bootstrap.UnmarshalKey("nacos", nc); err != nil {
		return fmt.Errorf("unmarshal nacos config: %w", err)
	}
	applyNacosEnvOverrides(nc)
	applyNacosDefaults(nc, serviceName)
	m.nacosConfig = nc

	serverConfigs := []constant.ServerConfig{
		*constant.NewServerConfig(nc.ServerAddr, nc.ServerPort, constant.WithContextPath("/nacos")),
	}
	clientConfig := *constant.NewClientConfig(
		constant.WithNamespaceId(nc.Namespace),
		constant.WithTimeoutMs(nc.TimeoutMs),
		constant.WithNotLoadCacheAtStart(true),
		constant.WithLogDir(nc.LogDir),
		constant.WithCacheDir(nc.CacheDir),
		constant.WithLogLevel(nc.LogLevel),
		constant.WithUsername(nc.Username),
		constant.WithPassword(nc.Password),
	)

	client, err := clients.NewConfigClient(vo.NacosClientParam{
		ClientConfig:  &clientConfig,
		ServerConfigs: serverConfigs,
	})
	if err != nil {
		return fmt.Errorf("create nacos client: %w", err)
	}
	m.nacosClient = client

	content, err := client.GetConfig(vo.ConfigParam{
		DataId: nc.DataID,
		Group:  nc.Group,
	})
	if err != nil {
		return fmt.Errorf("get config from nacos: %w", err)
	}

	m.viper.SetConfigType("yaml")
	if err := m.viper.ReadConfig(strings.NewReader(content)); err != nil {
		return fmt.Errorf("parse nacos config: %w", err)
	}

	if err := m.watchConfigChange(); err != nil {
		fmt.Printf("watch nacos config failed: %v\n", err)
	}
	return nil
}

func applyNacosEnvOverrides(nc *NacosConfig) {
	if v := os.Getenv("NACOS_SERVER_ADDR"); v != "" {
		nc.ServerAddr = v
	}
	if v := os.Getenv("NACOS_NAMESPACE"); v != "" {
		nc.Namespace = v
	}
	if v := os.Getenv("NACOS_GROUP"); v != "" {
		nc.Group = v
	}
	if v := os.Getenv("NACOS_DATA_ID"); v != "" {
		nc.DataID = v
	}
	if v := os.Getenv("NACOS_USERNAME"); v != "" {
		nc.Username = v
	}
	if v := os.Getenv("NACOS_PASSWORD"); v != "" {
		nc.Password = v
	}
}

func applyNacosDefaults(nc *NacosConfig, serviceName string) {
	if nc.DataID == "" {
		nc.DataID = serviceName + ".yaml"
	}
	if nc.ServerPort == 0 {
		nc.ServerPort = 8848
	}
	if nc.Group == "" {
		nc.Group = "DEFAULT_GROUP"
	}
	if nc.LogDir == "" {
		nc.LogDir = "/tmp/nacos/log"
	}
	if nc.CacheDir == "" {
		nc.CacheDir = "/tmp/nacos/cache"
	}
	if nc.LogLevel == "" {
		nc.LogLevel = "info"
	}
	if nc.TimeoutMs == 0 {
		nc.TimeoutMs = 5000
	}
}

func (m *Manager) watchConfigChange() error {
	return m.nacosClient.ListenConfig(vo.ConfigParam{
		DataId: m.nacosConfig.DataID,
		Group:  m.nacosConfig.Group,
		OnChange: func(namespace, group, dataId, data string) {
			m.viper.SetConfigType("yaml")
			if err := m.viper.ReadConfig(strings.NewReader(data)); err != nil {
				fmt.Printf("reload nacos config %s/%s failed: %v\n", group, dataId, err)
			}
		},
	})
}

// Unmarshal 解析整个配置到结构体
func (m *Manager) Unmarshal(rawVal interface{}) error {
	return m.viper.Unmarshal(rawVal)
}

// UnmarshalKey 解析指定 key 的配置到结构体
func (m *Manager) UnmarshalKey(key string, rawVal interface{}) error {
	return m.viper.UnmarshalKey(key, rawVal)
}

// GetString 获取字符串配置
func (m *Manager) GetString(key string) string {
	return m.viper.GetString(key)
}

// GetInt 获取整数配置
func (m *Manager) GetInt(key string) int {
	return m.viper.GetInt(key)
}

// IsSet 检查 key 是否被设置
func (m *Manager) IsSet(key string) bool {
	return m.viper.IsSet(key)
}

// GetMode 返回生效的配置模式
func (m *Manager) GetMode() Mode {
	return m.mode
}

// Close 取消 Nacos 监听
func (m *Manager) Close() error {
	if m.nacosClient != nil {
		m.nacosClient.CancelListenConfig(vo.ConfigParam{
			DataId: m.nacosConfig.DataID,
			Group:  m.nacosConfig.Group,
		})
	}
	return nil
}
