package message

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shoplytic/reminder-api/internal/model"
	"github.com/shoplytic/reminder-api/internal/repository"
)

// Message template tokens. The allow-list below is the complete set a
// template may reference; anything else is left untouched.
const (
	TokenStoreName          = "%Store.Name%"
	TokenStoreURL           = "%Store.URL%"
	TokenStoreEmail         = "%Store.Email%"
	TokenCompanyName        = "%Store.CompanyName%"
	TokenCompanyAddress     = "%Store.CompanyAddress%"
	TokenCompanyPhoneNumber = "%Store.CompanyPhoneNumber%"
	TokenCompanyVat         = "%Store.CompanyVat%"
	TokenTwitterURL         = "%Twitter.URL%"
	TokenFacebookURL        = "%Facebook.URL%"
	TokenYouTubeURL         = "%YouTube.URL%"
	TokenCart               = "%Cart%"
	TokenCustomerEmail      = "%Customer.Email%"
	TokenCustomerUsername   = "%Customer.Username%"
	TokenCustomerFullName   = "%Customer.FullName%"
	TokenCustomerFirstName  = "%Customer.FirstName%"
	TokenCustomerLastName   = "%Customer.LastName%"
)

var storeTokens = []string{
	TokenStoreName,
	TokenStoreURL,
	TokenStoreEmail,
	TokenCompanyName,
	TokenCompanyAddress,
	TokenCompanyPhoneNumber,
	TokenCompanyVat,
	TokenTwitterURL,
	TokenFacebookURL,
	TokenYouTubeURL,
}

var customerTokens = []string{
	TokenCustomerEmail,
	TokenCustomerUsername,
	TokenCustomerFullName,
	TokenCustomerFirstName,
	TokenCustomerLastName,
}

// allowedTokens is the static rule-type → token table, built once at
// init and read-only afterwards.
var allowedTokens = buildAllowedTokens()

func buildAllowedTokens() map[model.ReminderRuleType][]string {
	table := make(map[model.ReminderRuleType][]string)

	var abandonedCart []string
	abandonedCart = append(abandonedCart, storeTokens...)
	abandonedCart = append(abandonedCart, TokenCart)
	abandonedCart = append(abandonedCart, customerTokens...)
	table[model.RuleTypeAbandonedCart] = abandonedCart

	return table
}

// AllowedTokens returns the ordered token allow-list for a rule type. The
// cart token is only available to cart-triggered rules.
func AllowedTokens(ruleType model.ReminderRuleType) []string {
	tokens := allowedTokens[ruleType]
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

// StoreInfo carries the single store's identity for token resolution.
// Loaded from configuration at process start; never mutated afterwards.
type StoreInfo struct {
	Name        string
	URL         string
	Email       string
	CompanyName string
	CompanyAddr string
	CompanyTel  string
	CompanyVat  string
	TwitterURL  string
	FacebookURL string
	YouTubeURL  string
}

// TokenProvider resolves token values for one (customer, reminder) send.
type TokenProvider struct {
	store   StoreInfo
	catalog repository.ProductRepository
}

func NewTokenProvider(store StoreInfo, catalog repository.ProductRepository) *TokenProvider {
	return &TokenProvider{store: store, catalog: catalog}
}

// Build returns the token values for the given customer, restricted to
// the rule type's allow-list.
func (p *TokenProvider) Build(ctx context.Context, ruleType model.ReminderRuleType, customer *model.Customer) map[string]string {
	values := map[string]string{
		TokenStoreName:          p.store.Name,
		TokenStoreURL:           p.store.URL,
		TokenStoreEmail:         p.store.Email,
		TokenCompanyName:        p.store.CompanyName,
		TokenCompanyAddress:     p.store.CompanyAddr,
		TokenCompanyPhoneNumber: p.store.CompanyTel,
		TokenCompanyVat:         p.store.CompanyVat,
		TokenTwitterURL:         p.store.TwitterURL,
		TokenFacebookURL:        p.store.FacebookURL,
		TokenYouTubeURL:         p.store.YouTubeURL,
		TokenCustomerEmail:      customer.Email,
		TokenCustomerUsername:   customer.Username,
		TokenCustomerFullName:   customer.FullName(),
		TokenCustomerFirstName:  customer.FirstName,
		TokenCustomerLastName:   customer.LastName,
		TokenCart:               p.cartContents(ctx, customer),
	}

	allowed := make(map[string]string, len(values))
	for _, token := range AllowedTokens(ruleType) {
		if v, ok := values[token]; ok {
			allowed[token] = v
		}
	}
	return allowed
}

// cartContents renders the customer's cart as an HTML list. Products that
// no longer resolve are listed by id so the message still reflects the
// cart size.
func (p *TokenProvider) cartContents(ctx context.Context, customer *model.Customer) string {
	if len(customer.CartProductIDs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("<ul>")
	for _, productID := range customer.CartProductIDs {
		product, err := p.catalog.Get(ctx, productID)
		if err != nil || product == nil {
			fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(productID.String()))
			continue
		}
		fmt.Fprintf(&b, "<li>%s</li>", html.EscapeString(product.Name))
	}
	b.WriteString("</ul>")
	return b.String()
}
