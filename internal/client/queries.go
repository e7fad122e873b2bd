package client

import "fmt"

// The cart fragment mirrors what the cart drawer needs: handle, checkout URL,
// server-computed subtotal and every line with its merchandise variant. The
// lines page size is fixed per client instance.
const cartFieldsFormat = `
  id
  checkoutUrl
  cost {
    subtotalAmount { amount currencyCode }
  }
  lines(first: %d) {
    edges {
      node {
        id
        quantity
        cost {
          totalAmount { amount currencyCode }
        }
        merchandise {
          ... on ProductVariant {
            id
            title
            availableForSale
            price { amount currencyCode }
            selectedOptions { name value }
            product { title handle }
            image { url altText }
          }
        }
      }
    }
  }
`

const productCardFields = `
  id
  handle
  title
  featuredImage { url altText }
  priceRange {
    minVariantPrice { amount currencyCode }
  }
`

const productDetailFields = `
  id
  title
  description
  handle
  featuredImage { url altText }
  images(first: 6) {
    edges { node { url altText } }
  }
  options {
    name
    values
  }
  variants(first: 50) {
    edges {
      node {
        id
        title
        availableForSale
        price { amount currencyCode }
        selectedOptions { name value }
      }
    }
  }
`

// operations holds the fixed GraphQL documents, rendered once per client so
// the cart fragment carries the configured lines page size.
type operations struct {
	cartCreate      string
	cartQuery       string
	cartLinesAdd    string
	cartLinesUpdate string
	collection      string
	product         string
	products        string
}

func newOperations(linesPageSize int) operations {
	cartFields := fmt.Sprintf(cartFieldsFormat, linesPageSize)

	return operations{
		cartCreate: fmt.Sprintf(`
mutation CartCreate($input: CartInput!) {
  cartCreate(input: $input) {
    cart { %s }
  }
}`, cartFields),

		cartQuery: fmt.Sprintf(`
query CartQuery($id: ID!) {
  cart(id: $id) { %s }
}`, cartFields),

		cartLinesAdd: fmt.Sprintf(`
mutation CartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { %s }
  }
}`, cartFields),

		cartLinesUpdate: fmt.Sprintf(`
mutation CartLinesUpdate($cartId: ID!, $lines: [CartLineUpdateInput!]!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { %s }
  }
}`, cartFields),

		collection: fmt.Sprintf(`
query CollectionByHandle($handle: String!, $first: Int!) {
  collection(handle: $handle) {
    handle
    title
    description
    products(first: $first) {
      edges {
        node { %s }
      }
    }
  }
}`, productCardFields),

		product: fmt.Sprintf(`
query ProductByHandle($handle: String!) {
  product(handle: $handle) { %s }
}`, productDetailFields),

		products: fmt.Sprintf(`
query AllProducts($first: Int!) {
  products(first: $first) {
    edges {
      node { %s }
    }
  }
}`, productCardFields),
	}
}
