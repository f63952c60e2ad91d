package config

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	XAPI     XAPIConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Retry    RetryConfig
	Minio    MinioConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Worker   WorkerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type XAPIConfig struct {
	BaseURL        string        `envconfig:"X_API_BASE_URL" default:"https://api.x.com"`
	MediaPath      string        `envconfig:"X_API_MEDIA_PATH" default:"/2/media/upload"`
	PostPath       string        `envconfig:"X_API_POST_PATH" default:"/2/tweets"`
	UserAgent      string        `envconfig:"X_API_USER_AGENT" default:"MediaUploadSampleCode"`
	RequestTimeout time.Duration `envconfig:"X_API_REQUEST_TIMEOUT" default:"2m"`
}

type AuthConfig struct {
	ClientID        string        `envconfig:"CLIENT_ID"`
	ClientSecret    string        `envconfig:"CLIENT_SECRET"`
	RedirectURI     string        `envconfig:"AUTH_REDIRECT_URI" default:"https://www.example.com"`
	Scopes          []string      `envconfig:"AUTH_SCOPES" default:"media.write,users.read,tweet.read,tweet.write,offline.access"`
	AuthorizeURL    string        `envconfig:"AUTH_AUTHORIZE_URL" default:"https://x.com/i/oauth2/authorize"`
	TokenURL        string        `envconfig:"AUTH_TOKEN_URL" default:"https://api.x.com/2/oauth2/token"`
	RedirectMode    string        `envconfig:"AUTH_REDIRECT_MODE" default:"paste"` // paste | callback
	CallbackTimeout time.Duration `envconfig:"AUTH_CALLBACK_TIMEOUT" default:"5m"`
	TokenFile       string        `envconfig:"AUTH_TOKEN_FILE"`
}

type UploadConfig struct {
	FilePath        string        `envconfig:"UPLOAD_FILE_PATH"`
	PostText        string        `envconfig:"UPLOAD_POST_TEXT" default:"I just uploaded a video with the media upload v2 @XDevelopers API."`
	ChunkSize       int           `envconfig:"UPLOAD_CHUNK_SIZE" default:"4194304"` // 4MiB
	MediaType       string        `envconfig:"UPLOAD_MEDIA_TYPE" default:"video/mp4"`
	MediaCategory   string        `envconfig:"UPLOAD_MEDIA_CATEGORY" default:"tweet_video"`
	MaxPollDuration time.Duration `envconfig:"UPLOAD_MAX_POLL_DURATION" default:"0s"` // 0 means unbounded
}

// RetryConfig controls retries of transient API failures. MaxAttempts of 1 disables retrying.
type RetryConfig struct {
	MaxAttempts     int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"1"`
	InitialInterval time.Duration `envconfig:"RETRY_INITIAL_INTERVAL" default:"500ms"`
	MaxInterval     time.Duration `envconfig:"RETRY_MAX_INTERVAL" default:"8s"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type NATSConfig struct {
	URL          string        `envconfig:"NATS_URL"`
	PORT         string        `envconfig:"NATS_PORT" default:"4222"`
	StreamName   string        `envconfig:"NATS_STREAM_NAME"`
	ConsumerName string        `envconfig:"NATS_CONSUMER_NAME"`
	Subject      string        `envconfig:"NATS_SUBJECT"`
	AckWait      time.Duration `envconfig:"NATS_ACK_WAIT" default:"1m"`
	MaxDeliver   int           `envconfig:"NATS_MAX_DELIVER" default:"3"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER"`
	Password       string        `envconfig:"DB_PASSWORD"`
	Name           string        `envconfig:"DB_NAME"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

type WorkerConfig struct {
	DefaultPostText   string        `envconfig:"WORKER_DEFAULT_POST_TEXT" default:"New video"`
	AllowedMediaTypes []string      `envconfig:"WORKER_ALLOWED_MEDIA_TYPES" default:"video/mp4,video/quicktime"`
	SessionTTL        time.Duration `envconfig:"WORKER_SESSION_TTL" default:"6h"`
	CleanupEvery      time.Duration `envconfig:"WORKER_CLEANUP_EVERY" default:"15m"`
}

// Enabled reports whether an upload history database is configured
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

// Validate checks the settings the worker cannot run without
func (m MinioConfig) Validate() error {
	if m.Endpoint == "" || m.BucketName == "" || m.AccessKey == "" || m.SecretKey == "" {
		return errors.New("minio endpoint, bucket and credentials are required")
	}
	return nil
}

// Validate checks the settings the worker cannot run without
func (n NATSConfig) Validate() error {
	if n.URL == "" || n.StreamName == "" || n.ConsumerName == "" || n.Subject == "" {
		return errors.New("nats url, stream, consumer and subject are required")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
