/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	storeerrors "github.com/suparena/sportstore/errors"
	"github.com/suparena/sportstore/storagemodels"
)

// Item attribute names. Documents are kept whole in attrDoc so their
// field names never clash with the key schema.
const (
	attrPK         = "PK"
	attrSK         = "SK"
	attrCollection = "collection"
	attrID         = "id"
	attrRev        = "rev"
	attrDoc        = "doc"
	attrOwner      = "owner"
)

// API is the subset of the DynamoDB client the engine uses.
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	TransactWriteItems(ctx context.Context, params *sdk.TransactWriteItemsInput, optFns ...func(*sdk.Options)) (*sdk.TransactWriteItemsOutput, error)
	Scan(ctx context.Context, params *sdk.ScanInput, optFns ...func(*sdk.Options)) (*sdk.ScanOutput, error)
	DescribeTable(ctx context.Context, params *sdk.DescribeTableInput, optFns ...func(*sdk.Options)) (*sdk.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *sdk.CreateTableInput, optFns ...func(*sdk.Options)) (*sdk.CreateTableOutput, error)
}

// ClientConfig holds connection settings. Endpoint is only set for
// DynamoDB Local or other compatible services.
type ClientConfig struct {
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// NewDynamoDBClient initializes a DynamoDB client. Without static keys the
// default credential chain is used.
func NewDynamoDBClient(ctx context.Context, cc ClientConfig) (*sdk.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cc.Region)}
	if cc.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cc.AccessKey, cc.SecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if cc.Endpoint != "" {
			o.BaseEndpoint = aws.String(cc.Endpoint)
		}
	}), nil
}

// Engine stores all collections in one DynamoDB table. Every document is
// one item; every unique value is a marker item owned by its document, and
// both are written in a single transaction.
type Engine struct {
	client API
	table  string

	mu     sync.RWMutex
	unique map[string][]string
	closed bool
}

// New returns an engine on table. Call EnsureTable to create it if needed.
func New(client API, table string) *Engine {
	return &Engine{client: client, table: table, unique: make(map[string][]string)}
}

func docKey(collection, id string) string {
	return "DOC#" + collection + "#" + id
}

func markerKey(collection, field, key string) string {
	return "UNIQUE#" + collection + "#" + field + "#" + key
}

func itemKey(pk string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pk},
		attrSK: &types.AttributeValueMemberS{Value: pk},
	}
}

// EnsureCollection records the unique fields of a collection. DynamoDB needs
// no per-collection schema; markers are written with each document.
func (e *Engine) EnsureCollection(ctx context.Context, name string, uniqueFields []string) error {
	if name == "" {
		return storeerrors.NewValidationError("collection", "cannot be empty")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return storeerrors.ErrClosed
	}
	e.unique[name] = append([]string(nil), uniqueFields...)
	return nil
}

func (e *Engine) fields(collection string) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, storeerrors.ErrClosed
	}
	fields, ok := e.unique[collection]
	if !ok {
		return nil, fmt.Errorf("collection %q does not exist", collection)
	}
	return fields, nil
}

// markers returns the marker keys of doc, indexed by field.
func markers(collection string, fields []string, doc storagemodels.Document) (map[string]string, error) {
	out := make(map[string]string, len(fields))
	for _, field := range fields {
		key, ok, err := storagemodels.UniqueKey(doc[field])
		if err != nil {
			return nil, err
		}
		if ok {
			out[field] = markerKey(collection, field, key)
		}
	}
	return out, nil
}

func (e *Engine) docItem(collection, id string, rev int64, doc storagemodels.Document) (map[string]types.AttributeValue, error) {
	av, err := toAttributeValue(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	item := itemKey(docKey(collection, id))
	item[attrCollection] = &types.AttributeValueMemberS{Value: collection}
	item[attrID] = &types.AttributeValueMemberS{Value: id}
	item[attrRev] = &types.AttributeValueMemberN{Value: strconv.FormatInt(rev, 10)}
	item[attrDoc] = av
	return item, nil
}

func (e *Engine) putMarker(pk, owner string) types.TransactWriteItem {
	item := itemKey(pk)
	item[attrOwner] = &types.AttributeValueMemberS{Value: owner}
	return types.TransactWriteItem{Put: &types.Put{
		TableName:           aws.String(e.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}}
}

func (e *Engine) deleteMarker(pk, owner string) types.TransactWriteItem {
	return types.TransactWriteItem{Delete: &types.Delete{
		TableName:                 aws.String(e.table),
		Key:                       itemKey(pk),
		ConditionExpression:       aws.String("#owner = :owner"),
		ExpressionAttributeNames:  map[string]string{"#owner": attrOwner},
		ExpressionAttributeValues: map[string]types.AttributeValue{":owner": &types.AttributeValueMemberS{Value: owner}},
	}}
}

func revCondition(rev int64) (*string, map[string]string, map[string]types.AttributeValue) {
	return aws.String("#rev = :rev"),
		map[string]string{"#rev": attrRev},
		map[string]types.AttributeValue{":rev": &types.AttributeValueMemberN{Value: strconv.FormatInt(rev, 10)}}
}

func (e *Engine) Insert(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	fields, err := e.fields(collection)
	if err != nil {
		return err
	}
	item, err := e.docItem(collection, id, 1, doc)
	if err != nil {
		return err
	}
	keys, err := markers(collection, fields, doc)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{{Put: &types.Put{
		TableName:           aws.String(e.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}}}
	owners := []string{storagemodels.IdentifierKey}
	for _, field := range fields {
		if pk, ok := keys[field]; ok {
			items = append(items, e.putMarker(pk, id))
			owners = append(owners, field)
		}
	}

	_, err = e.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if i, ok := failedCondition(err); ok {
			field := owners[i]
			value := doc[field]
			if i == 0 {
				value = id
			}
			return storeerrors.NewConstraintViolationError(collection, field, value)
		}
		return fmt.Errorf("failed to insert item in DynamoDB: %w", err)
	}
	return nil
}

func (e *Engine) Replace(ctx context.Context, collection, id string, doc storagemodels.Document) error {
	fields, err := e.fields(collection)
	if err != nil {
		return err
	}
	old, rev, err := e.load(ctx, collection, id)
	if err != nil {
		return err
	}
	item, err := e.docItem(collection, id, rev+1, doc)
	if err != nil {
		return err
	}
	oldKeys, err := markers(collection, fields, old)
	if err != nil {
		return err
	}
	newKeys, err := markers(collection, fields, doc)
	if err != nil {
		return err
	}

	cond, names, values := revCondition(rev)
	items := []types.TransactWriteItem{{Put: &types.Put{
		TableName:                 aws.String(e.table),
		Item:                      item,
		ConditionExpression:       cond,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}}}
	owners := []string{""}
	for _, field := range fields {
		oldPK, hadOld := oldKeys[field]
		newPK, hasNew := newKeys[field]
		if hadOld && hasNew && oldPK == newPK {
			continue
		}
		if hadOld {
			items = append(items, e.deleteMarker(oldPK, id))
			owners = append(owners, "")
		}
		if hasNew {
			items = append(items, e.putMarker(newPK, id))
			owners = append(owners, field)
		}
	}

	_, err = e.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if i, ok := failedCondition(err); ok {
			if field := owners[i]; field != "" {
				return storeerrors.NewConstraintViolationError(collection, field, doc[field])
			}
			return e.conflict(ctx, collection, id)
		}
		return fmt.Errorf("failed to replace item in DynamoDB: %w", err)
	}
	return nil
}

func (e *Engine) Delete(ctx context.Context, collection, id string) error {
	fields, err := e.fields(collection)
	if err != nil {
		return err
	}
	old, rev, err := e.load(ctx, collection, id)
	if err != nil {
		return err
	}
	oldKeys, err := markers(collection, fields, old)
	if err != nil {
		return err
	}

	cond, names, values := revCondition(rev)
	items := []types.TransactWriteItem{{Delete: &types.Delete{
		TableName:                 aws.String(e.table),
		Key:                       itemKey(docKey(collection, id)),
		ConditionExpression:       cond,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}}}
	for _, field := range fields {
		if pk, ok := oldKeys[field]; ok {
			items = append(items, e.deleteMarker(pk, id))
		}
	}

	_, err = e.client.TransactWriteItems(ctx, &sdk.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if _, ok := failedCondition(err); ok {
			return e.conflict(ctx, collection, id)
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

// conflict explains a failed revision check: the document is gone, or it
// changed since it was read.
func (e *Engine) conflict(ctx context.Context, collection, id string) error {
	if _, _, err := e.load(ctx, collection, id); err != nil {
		return err
	}
	return fmt.Errorf("%s/%s was modified concurrently", collection, id)
}

// load reads a document and its revision with a consistent read.
func (e *Engine) load(ctx context.Context, collection, id string) (storagemodels.Document, int64, error) {
	out, err := e.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(e.table),
		Key:            itemKey(docKey(collection, id)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, 0, storeerrors.NewNotFoundError(collection, id)
	}
	return decodeItem(out.Item)
}

func decodeItem(item map[string]types.AttributeValue) (storagemodels.Document, int64, error) {
	var rev int64
	if attr, ok := item[attrRev]; ok {
		if err := attributevalue.Unmarshal(attr, &rev); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal %s: %w", attrRev, err)
		}
	}
	m, ok := item[attrDoc].(*types.AttributeValueMemberM)
	if !ok {
		return nil, 0, fmt.Errorf("item has no %q map attribute", attrDoc)
	}
	doc, err := fromAttributeMap(m.Value)
	if err != nil {
		return nil, 0, err
	}
	return doc, rev, nil
}

func (e *Engine) Get(ctx context.Context, collection, id string) (storagemodels.Document, error) {
	if _, err := e.fields(collection); err != nil {
		return nil, err
	}
	doc, _, err := e.load(ctx, collection, id)
	return doc, err
}

func (e *Engine) GetByUnique(ctx context.Context, collection, field string, value interface{}) (storagemodels.Document, error) {
	fields, err := e.fields(collection)
	if err != nil {
		return nil, err
	}
	if !contains(fields, field) {
		return nil, fmt.Errorf("field %q of collection %q is not unique", field, collection)
	}
	key, ok, err := storagemodels.UniqueKey(value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storeerrors.NewNotFoundError(collection, field+"=<nil>")
	}

	out, err := e.client.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(e.table),
		Key:            itemKey(markerKey(collection, field, key)),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item from DynamoDB: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, storeerrors.NewNotFoundError(collection, field+"="+key)
	}
	var owner string
	if err := attributevalue.Unmarshal(out.Item[attrOwner], &owner); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", attrOwner, err)
	}
	doc, _, err := e.load(ctx, collection, owner)
	return doc, err
}

// List scans the table for the collection and orders documents by identifier.
func (e *Engine) List(ctx context.Context, collection string) ([]storagemodels.Document, error) {
	if _, err := e.fields(collection); err != nil {
		return nil, err
	}

	items, err := e.scan(ctx, collection, DefaultScanOptions())
	if err != nil {
		return nil, err
	}
	docs := make([]storagemodels.Document, 0, len(items))
	for _, item := range items {
		doc, _, err := decodeItem(item)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID() < docs[j].ID() })
	return docs, nil
}

// Mapper stores timestamps as epoch milliseconds, DynamoDB's usual format.
func (e *Engine) Mapper() storagemodels.Mapper {
	return storagemodels.EpochMillisMapper{}
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return storeerrors.ErrClosed
	}
	e.closed = true
	return nil
}

// failedCondition returns the index of the first transaction item whose
// condition check failed.
func failedCondition(err error) (int, bool) {
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return 0, false
	}
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return i, true
		}
	}
	return 0, false
}

func contains(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
