// Package graphql exposes a read-only query surface over the catalog and
// the caller's orders. Mutations stay on the REST endpoints, where the
// transactional checkout semantics live.
package graphql

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"

	"github.com/sweetcrumb/shop/app/models"
	"github.com/sweetcrumb/shop/app/services"
	"github.com/sweetcrumb/shop/pkg/middleware"
	"github.com/sweetcrumb/shop/pkg/response"
)

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.Int},
		"name":        &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"price":       &graphql.Field{Type: graphql.String},
		"stock":       &graphql.Field{Type: graphql.Int},
		"sku":         &graphql.Field{Type: graphql.String},
		"active":      &graphql.Field{Type: graphql.Boolean},
	},
})

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"productId": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.OrderItem).ProductID, nil
		}},
		"quantity": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.OrderItem).Quantity, nil
		}},
		"unitPrice": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.OrderItem).UnitPrice.String(), nil
		}},
		"subtotal": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.OrderItem).Subtotal.String(), nil
		}},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.Int, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Order).ID, nil
		}},
		"status": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return string(p.Source.(models.Order).Status), nil
		}},
		"total": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Order).Total.String(), nil
		}},
		"items": &graphql.Field{Type: graphql.NewList(orderItemType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Order).Items, nil
		}},
	},
})

type principalKey struct{}

// NewSchema builds the root query. Resolvers reuse the same services the
// REST controllers call, so scoping rules stay in one place.
func NewSchema(products *services.ProductService, orders *services.OrderService) (graphql.Schema, error) {
	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return products.Catalog()
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(int)
					return products.Get(uint(id))
				},
			},
			"myOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					userID, ok := p.Context.Value(principalKey{}).(uint)
					if !ok {
						return nil, services.ErrOrderNotFound
					}
					list, _, err := orders.List(userID, false, "", 1, 100)
					return list, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: root})
}

// Handler serves POST /api/graphql for authenticated users.
func Handler(schema graphql.Schema) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserIDFromCtx(r)
		if !ok {
			response.Unauthorized(w)
			return
		}

		var body struct {
			Query     string                 `json:"query"`
			Variables map[string]interface{} `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  body.Query,
			VariableValues: body.Variables,
			Context:        context.WithValue(r.Context(), principalKey{}, userID),
		})

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(result)
	}
}
