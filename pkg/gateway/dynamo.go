package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/dispatch-console/pkg/model"
)

// DynamoClient abstrai o cliente DynamoDB (permite Mocking).
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// serviceItem é o formato do item na tabela: o serviço com as operações aninhadas
// e a contagem de mensagens. Partition key: "id".
type serviceItem struct {
	model.Service
	MessagesMap map[string]int `dynamodbav:"messagesMap,omitempty"`
}

// DynamoGateway lê e atualiza serviços guardados em uma tabela DynamoDB.
type DynamoGateway struct {
	client DynamoClient
	table  string
}

func NewDynamoGateway(client DynamoClient, table string) *DynamoGateway {
	return &DynamoGateway{client: client, table: table}
}

func (g *DynamoGateway) key(serviceID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: serviceID},
	}
}

func (g *DynamoGateway) get(ctx context.Context, serviceID string) (*serviceItem, error) {
	out, err := g.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(g.table),
		Key:            g.key(serviceID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb: get failed: %w", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceID)
	}

	var item serviceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("dynamodb: unmarshal failed: %w", err)
	}
	return &item, nil
}

func (g *DynamoGateway) GetServiceView(ctx context.Context, serviceID string) (*model.ServiceView, error) {
	item, err := g.get(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return &model.ServiceView{Service: item.Service, MessagesMap: item.MessagesMap}, nil
}

// UpdateOperationProperties atualiza operations[i] in-place. A condição sobre o nome
// falha se a lista foi reordenada depois da leitura.
func (g *DynamoGateway) UpdateOperationProperties(ctx context.Context, svc model.Service, operationName string, props model.OperationProperties) error {
	item, err := g.get(ctx, svc.ID)
	if err != nil {
		return err
	}
	idx, ok := item.Service.OperationIndex()[operationName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrOperationNotFound, operationName)
	}

	path := func(field string) expression.NameBuilder {
		return expression.Name(fmt.Sprintf("operations[%d].%s", idx, field))
	}
	update := expression.
		Set(path("defaultDelay"), expression.Value(props.DefaultDelay)).
		Set(path("dispatcher"), expression.Value(props.Dispatcher)).
		Set(path("dispatcherRules"), expression.Value(props.DispatcherRules))
	cond := expression.Equal(path("name"), expression.Value(operationName))

	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("dynamodb: expression build failed: %w", err)
	}

	_, err = g.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(g.table),
		Key:                       g.key(svc.ID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("dynamodb: operation '%s' moved during update: %w", operationName, err)
		}
		return fmt.Errorf("dynamodb: update failed: %w", err)
	}
	return nil
}

// PutServiceView grava (upsert) um serviço completo.
func (g *DynamoGateway) PutServiceView(ctx context.Context, view model.ServiceView) error {
	av, err := attributevalue.MarshalMap(serviceItem{Service: view.Service, MessagesMap: view.MessagesMap})
	if err != nil {
		return fmt.Errorf("dynamodb: marshal failed: %w", err)
	}
	_, err = g.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(g.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamodb: put failed: %w", err)
	}
	return nil
}
