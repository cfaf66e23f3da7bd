package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Publisher types.
const (
	TypeHTTP   = "http"
	TypeQueue  = "queue"
	TypeStdout = "stdout"
)

// Queue providers.
const (
	QueueProviderAWSSQS = "aws-sqs"
	QueueProviderAWSSNS = "aws-sns"
	QueueProviderGCP    = "gcp"
)

// Body formats. FormatSlack is the Block Kit payload, FormatEvent the whole Event.
const (
	FormatSlack = "slack"
	FormatEvent = "event"
)

const httpDefaultTimeoutSeconds = 20

// formatsByType lists the formats a publisher type can emit; the first is the default.
var formatsByType = map[string][]string{
	TypeHTTP:   {FormatSlack, FormatEvent},
	TypeStdout: {FormatSlack, FormatEvent},
	TypeQueue:  {FormatEvent},
}

// PublisherConfig is one delivery target of the digest.
type PublisherConfig struct {
	ID      string       `json:"id" yaml:"id"`
	Type    string       `json:"type" yaml:"type"`
	Format  string       `json:"format" yaml:"format"`
	Enabled *bool        `json:"enabled" yaml:"enabled"`
	HTTP    *HTTPConfig  `json:"http" yaml:"http"`
	Queue   *QueueConfig `json:"queue" yaml:"queue"`
}

// HTTPConfig is a webhook endpoint.
type HTTPConfig struct {
	URL            string            `json:"url" yaml:"url"`
	Method         string            `json:"method" yaml:"method"`
	Headers        map[string]string `json:"headers" yaml:"headers"`
	TimeoutSeconds int               `json:"timeout_seconds" yaml:"timeout_seconds"`
}

// QueueConfig selects a cloud queue and carries its settings.
type QueueConfig struct {
	Provider string        `json:"provider" yaml:"provider"`
	SQS      *SQSConfig    `json:"aws" yaml:"aws"`
	SNS      *SNSConfig    `json:"sns" yaml:"sns"`
	PubSub   *PubSubConfig `json:"gcp" yaml:"gcp"`
}

// SQSConfig addresses an SQS queue with static credentials.
type SQSConfig struct {
	QueueURL        string `json:"uri" yaml:"uri"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// SNSConfig addresses an SNS topic with static credentials.
type SNSConfig struct {
	TopicARN        string `json:"topic_arn" yaml:"topic_arn"`
	Region          string `json:"region" yaml:"region"`
	AccessKeyID     string `json:"access_key_id" yaml:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" yaml:"secret_access_key"`
}

// PubSubConfig addresses a Pub/Sub topic. An empty CredentialsFile uses
// application default credentials.
type PubSubConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Topic           string `json:"topic" yaml:"topic"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
}

// LoadFile reads publisher targets from a YAML or JSON file, expanding
// ${VAR} references, and returns the enabled ones in file order.
func LoadFile(path string) ([]PublisherConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read publishers file: %w", err)
	}
	expanded := []byte(os.ExpandEnv(string(raw)))

	var doc struct {
		Publishers []PublisherConfig `json:"publishers" yaml:"publishers"`
	}
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(expanded, &doc); err != nil {
		return nil, fmt.Errorf("decode publishers file %s: %w", path, err)
	}
	if len(doc.Publishers) == 0 {
		return nil, fmt.Errorf("publishers file %s declares no publishers", path)
	}

	ids := make(map[string]struct{}, len(doc.Publishers))
	var out []PublisherConfig
	for i, cfg := range doc.Publishers {
		cfg.normalize()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if _, dup := ids[cfg.ID]; dup {
			return nil, fmt.Errorf("publishers[%d]: duplicate id %q", i, cfg.ID)
		}
		ids[cfg.ID] = struct{}{}
		if cfg.enabled() {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (c PublisherConfig) enabled() bool { return c.Enabled == nil || *c.Enabled }

// normalize trims fields and fills per-type defaults.
func (c *PublisherConfig) normalize() {
	c.ID = strings.TrimSpace(c.ID)
	c.Type = strings.ToLower(strings.TrimSpace(c.Type))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	if c.Format == "" {
		if formats := formatsByType[c.Type]; len(formats) > 0 {
			c.Format = formats[0]
		}
	}

	if h := c.HTTP; h != nil {
		h.URL = strings.TrimSpace(h.URL)
		h.Method = strings.ToUpper(strings.TrimSpace(h.Method))
		if h.Method == "" {
			h.Method = http.MethodPost
		}
		if h.TimeoutSeconds <= 0 {
			h.TimeoutSeconds = httpDefaultTimeoutSeconds
		}
		headers := make(map[string]string, len(h.Headers))
		for k, v := range h.Headers {
			if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
				headers[k] = v
			}
		}
		h.Headers = headers
	}

	if q := c.Queue; q != nil {
		q.Provider = strings.ToLower(strings.TrimSpace(q.Provider))
		if s := q.SQS; s != nil {
			trimFields(&s.QueueURL, &s.Region, &s.AccessKeyID, &s.SecretAccessKey)
		}
		if s := q.SNS; s != nil {
			trimFields(&s.TopicARN, &s.Region, &s.AccessKeyID, &s.SecretAccessKey)
		}
		if p := q.PubSub; p != nil {
			trimFields(&p.ProjectID, &p.Topic, &p.CredentialsFile)
		}
	}
}

func trimFields(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}

func (c PublisherConfig) validate() error {
	if c.ID == "" {
		return errors.New("id is required")
	}
	formats, ok := formatsByType[c.Type]
	if !ok {
		return fmt.Errorf("publisher %q: type %q not supported", c.ID, c.Type)
	}
	if !slices.Contains(formats, c.Format) {
		return fmt.Errorf("publisher %q: format %q not supported for %s publishers (want one of %s)",
			c.ID, c.Format, c.Type, strings.Join(formats, ", "))
	}

	switch c.Type {
	case TypeHTTP:
		if c.HTTP == nil {
			return fmt.Errorf("publisher %q: http section is required", c.ID)
		}
		return required(c.ID, field{"http.url", c.HTTP.URL})
	case TypeQueue:
		if c.Queue == nil {
			return fmt.Errorf("publisher %q: queue section is required", c.ID)
		}
		return c.Queue.validate(c.ID)
	}
	return nil
}

func (q *QueueConfig) validate(id string) error {
	switch q.Provider {
	case QueueProviderAWSSQS:
		if q.SQS == nil {
			return fmt.Errorf("publisher %q: queue.aws section is required", id)
		}
		return required(id,
			field{"queue.aws.uri", q.SQS.QueueURL},
			field{"queue.aws.region", q.SQS.Region},
			field{"queue.aws.access_key_id", q.SQS.AccessKeyID},
			field{"queue.aws.secret_access_key", q.SQS.SecretAccessKey},
		)
	case QueueProviderAWSSNS:
		if q.SNS == nil {
			return fmt.Errorf("publisher %q: queue.sns section is required", id)
		}
		return required(id,
			field{"queue.sns.topic_arn", q.SNS.TopicARN},
			field{"queue.sns.region", q.SNS.Region},
			field{"queue.sns.access_key_id", q.SNS.AccessKeyID},
			field{"queue.sns.secret_access_key", q.SNS.SecretAccessKey},
		)
	case QueueProviderGCP:
		if q.PubSub == nil {
			return fmt.Errorf("publisher %q: queue.gcp section is required", id)
		}
		return required(id,
			field{"queue.gcp.project_id", q.PubSub.ProjectID},
			field{"queue.gcp.topic", q.PubSub.Topic},
		)
	default:
		return fmt.Errorf("publisher %q: queue provider %q not supported", id, q.Provider)
	}
}

type field struct {
	name  string
	value string
}

// required reports every empty field at once.
func required(id string, fields ...field) error {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("publisher %q: missing %s", id, strings.Join(missing, ", "))
	}
	return nil
}
