/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/sportstore/storagemodels"
)

// toAttributeValue converts a document value. Values outside the native set
// are handed to attributevalue.Marshal.
func toAttributeValue(v interface{}) (types.AttributeValue, error) {
	switch val := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: val}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: val}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.Itoa(val)}, nil
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(val), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(val, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(val, 'g', -1, 64)}, nil
	case storagemodels.Document:
		return toAttributeMap(val)
	case map[string]interface{}:
		return toAttributeMap(val)
	case []interface{}:
		list := make([]types.AttributeValue, 0, len(val))
		for i, elem := range val {
			av, err := toAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, av)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	default:
		return attributevalue.Marshal(v)
	}
}

func toAttributeMap(doc map[string]interface{}) (types.AttributeValue, error) {
	m := make(map[string]types.AttributeValue, len(doc))
	for k, v := range doc {
		av, err := toAttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		m[k] = av
	}
	return &types.AttributeValueMemberM{Value: m}, nil
}

// fromAttributeValue converts back to the native document value set.
// Numbers without a fraction or exponent decode as int64.
func fromAttributeValue(av types.AttributeValue) (interface{}, error) {
	switch val := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil, nil
	case *types.AttributeValueMemberS:
		return val.Value, nil
	case *types.AttributeValueMemberBOOL:
		return val.Value, nil
	case *types.AttributeValueMemberN:
		if !strings.ContainsAny(val.Value, ".eE") {
			if n, err := strconv.ParseInt(val.Value, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(val.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", val.Value, err)
		}
		return f, nil
	case *types.AttributeValueMemberM:
		return fromAttributeMap(val.Value)
	case *types.AttributeValueMemberL:
		list := make([]interface{}, 0, len(val.Value))
		for i, elem := range val.Value {
			v, err := fromAttributeValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list = append(list, v)
		}
		return list, nil
	case *types.AttributeValueMemberB:
		return string(val.Value), nil
	case *types.AttributeValueMemberSS:
		list := make([]interface{}, len(val.Value))
		for i, s := range val.Value {
			list[i] = s
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}

func fromAttributeMap(m map[string]types.AttributeValue) (storagemodels.Document, error) {
	doc := make(storagemodels.Document, len(m))
	for k, av := range m {
		v, err := fromAttributeValue(av)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		doc[k] = v
	}
	return doc, nil
}
