package publishers

import (
	"context"
	"errors"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const maxSNSSubjectRunes = 100

// snsAPI is the part of the SNS client the sender calls.
type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type snsSender struct {
	topicARN string
	client   snsAPI
}

func newSNSSender(ctx context.Context, cfg *SNSConfig) (queueSender, error) {
	if cfg == nil {
		return nil, errors.New("sns configuration is missing")
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, err
	}
	return &snsSender{topicARN: cfg.TopicARN, client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *snsSender) Send(ctx context.Context, msg queueMessage) (string, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(snsSubject(msg.Subject)),
		Message:  aws.String(string(msg.Body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_id":      {DataType: aws.String("String"), StringValue: aws.String(msg.EventID)},
			"article_count": {DataType: aws.String("Number"), StringValue: aws.String(strconv.Itoa(msg.ArticleCount))},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}

// snsSubject fits the title into the SNS subject limit.
func snsSubject(title string) string {
	if title == "" {
		title = "regwatch digest"
	}
	runes := []rune(title)
	if len(runes) > maxSNSSubjectRunes {
		return string(runes[:maxSNSSubjectRunes])
	}
	return title
}
