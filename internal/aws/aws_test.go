package awsclient

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockSecretsClient struct {
	mock.Mock
}

func (m *MockSecretsClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	args := m.Called(ctx, params)
	out, _ := args.Get(0).(*secretsmanager.GetSecretValueOutput)
	return out, args.Error(1)
}

func TestGetSecretString(t *testing.T) {
	client := new(MockSecretsClient)
	client.On("GetSecretValue", mock.Anything, mock.MatchedBy(func(in *secretsmanager.GetSecretValueInput) bool {
		return aws.ToString(in.SecretId) == "roster-token"
	})).Return(&secretsmanager.GetSecretValueOutput{SecretString: aws.String("s3cret")}, nil)

	value, err := GetSecretString(context.Background(), client, "roster-token")
	assert.NoError(t, err)
	assert.Equal(t, "s3cret", value)
	client.AssertExpectations(t)
}

func TestGetSecretString_Errors(t *testing.T) {
	client := new(MockSecretsClient)

	_, err := GetSecretString(context.Background(), client, "")
	assert.Error(t, err)

	client.On("GetSecretValue", mock.Anything, mock.Anything).Return(nil, errors.New("access denied")).Once()
	_, err = GetSecretString(context.Background(), client, "roster-token")
	assert.ErrorContains(t, err, "access denied")

	client.On("GetSecretValue", mock.Anything, mock.Anything).Return(&secretsmanager.GetSecretValueOutput{}, nil).Once()
	_, err = GetSecretString(context.Background(), client, "roster-token")
	assert.ErrorContains(t, err, "no string value")
}
