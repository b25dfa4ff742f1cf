/*
Package ddb stores documents in a single DynamoDB table.

Every document is one item keyed DOC#<collection>#<identifier>, holding the
document as a map attribute plus a revision number. Every non-nil value of a
unique field is a marker item keyed UNIQUE#<collection>#<field>#<value>
whose owner attribute names the document. A write and its markers go into
one TransactWriteItems call, so the marker's attribute_not_exists condition
enforces uniqueness even between processes.

	client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{Region: "eu-central-1"})
	engine := ddb.New(client, "sportstore")
	err = engine.EnsureTable(ctx, time.Minute)

Numbers come back as int64 when they have no fractional part, otherwise as
float64. Adding a unique field to a collection that already holds documents
does not write markers for them.
*/
package ddb
