package devserver

import (
	"fmt"
	"net/http"

	"github.com/graphql-go/graphql"

	gql "github.com/ordersync/ordersync/pkg/graphql"
)

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":              &graphql.Field{Type: graphql.String},
		"customerName":    &graphql.Field{Type: graphql.String},
		"email":           &graphql.Field{Type: graphql.String},
		"contactNumber":   &graphql.Field{Type: graphql.String},
		"shippingAddress": &graphql.Field{Type: graphql.String},
		"productName":     &graphql.Field{Type: graphql.String},
		"quantity":        &graphql.Field{Type: graphql.Int},
		"productImage":    &graphql.Field{Type: graphql.String},
		"status":          &graphql.Field{Type: graphql.String},
	},
})

// graphqlHandler exposes a read-only query surface over the order set for
// ad-hoc inspection during development.
func (s *Server) graphqlHandler() (http.HandlerFunc, error) {
	root := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"orders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
					"search": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := ListQuery{
						Page:   p.Args["page"].(int),
						Limit:  p.Args["limit"].(int),
						Search: p.Args["search"].(string),
					}
					data, _, err := s.orders.List(q)
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(data))
					for i, o := range data {
						out[i] = map[string]interface{}{
							"id":              o.ID,
							"customerName":    o.CustomerName,
							"email":           o.Email,
							"contactNumber":   o.ContactNumber,
							"shippingAddress": o.ShippingAddress,
							"productName":     o.ProductName,
							"quantity":        o.Quantity,
							"productImage":    o.ProductImage,
							"status":          o.Status,
						}
					}
					return out, nil
				},
			},
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					row, err := s.orders.Find(p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					o := row.API()
					return map[string]interface{}{
						"id":              o.ID,
						"customerName":    o.CustomerName,
						"email":           o.Email,
						"contactNumber":   o.ContactNumber,
						"shippingAddress": o.ShippingAddress,
						"productName":     o.ProductName,
						"quantity":        o.Quantity,
						"productImage":    o.ProductImage,
						"status":          o.Status,
					}, nil
				},
			},
		},
	})

	schema, err := gql.NewSchema(root)
	if err != nil {
		return nil, fmt.Errorf("devserver: build graphql schema: %w", err)
	}
	return gql.Handler(schema), nil
}
