package domain

// Field is one stored configuration key of a payment method.
type Field struct {
	Key      string
	Label    string
	Required bool
	Secret   bool
}

// Descriptor is the single source of truth for a payment method: which keys
// it projects, which are required and which are sealed at rest.
type Descriptor struct {
	Key    string
	Name   string
	Fields []Field
}

// EnabledKey is the settings key holding the method's on/off flag.
func (d Descriptor) EnabledKey() string {
	return "is_" + d.Key + "_enabled"
}

func (d Descriptor) RequiredFields() []Field {
	out := make([]Field, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.Required {
			out = append(out, f)
		}
	}
	return out
}

func (d Descriptor) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys lists every stored key for the method, including the enabled flag.
func (d Descriptor) Keys() []string {
	keys := make([]string, 0, len(d.Fields)+1)
	keys = append(keys, d.EnabledKey())
	for _, f := range d.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

func req(key, label string) Field    { return Field{Key: key, Label: label, Required: true} }
func secret(key, label string) Field { return Field{Key: key, Label: label, Required: true, Secret: true} }
func opt(key, label string) Field    { return Field{Key: key, Label: label} }

var registry = []Descriptor{
	{Key: "bank_transfer", Name: "Bank Transfer", Fields: []Field{req("bank_details", "Bank Details")}},
	{Key: "stripe", Name: "Stripe", Fields: []Field{req("stripe_key", "Stripe Key"), secret("stripe_secret", "Stripe Secret")}},
	{Key: "paypal", Name: "PayPal", Fields: []Field{opt("paypal_mode", "PayPal Mode"), req("paypal_client_id", "PayPal Client ID"), secret("paypal_secret_key", "PayPal Secret Key")}},
	{Key: "razorpay", Name: "Razorpay", Fields: []Field{req("razorpay_public_key", "Razorpay Public Key"), secret("razorpay_secret_key", "Razorpay Secret Key")}},
	{Key: "paystack", Name: "Paystack", Fields: []Field{req("paystack_public_key", "Paystack Public Key"), secret("paystack_secret_key", "Paystack Secret Key")}},
	{Key: "flutterwave", Name: "Flutterwave", Fields: []Field{req("flutterwave_public_key", "Flutterwave Public Key"), secret("flutterwave_secret_key", "Flutterwave Secret Key")}},
	{Key: "mercadopago", Name: "Mercado Pago", Fields: []Field{opt("mercadopago_mode", "Mercado Pago Mode"), secret("mercadopago_access_token", "Mercado Pago Access Token")}},
	{Key: "mollie", Name: "Mollie", Fields: []Field{secret("mollie_api_key", "Mollie API Key"), req("mollie_profile_id", "Mollie Profile ID"), req("mollie_partner_id", "Mollie Partner ID")}},
	{Key: "skrill", Name: "Skrill", Fields: []Field{req("skrill_email", "Skrill Email")}},
	{Key: "coingate", Name: "CoinGate", Fields: []Field{opt("coingate_mode", "CoinGate Mode"), secret("coingate_auth_token", "CoinGate Auth Token")}},
	{Key: "paymentwall", Name: "Paymentwall", Fields: []Field{req("paymentwall_public_key", "Paymentwall Public Key"), secret("paymentwall_private_key", "Paymentwall Private Key")}},
	{Key: "toyyibpay", Name: "Toyyibpay", Fields: []Field{secret("toyyibpay_secret_key", "Toyyibpay Secret Key"), req("toyyibpay_category_code", "Toyyibpay Category Code")}},
	{Key: "payfast", Name: "PayFast", Fields: []Field{opt("payfast_mode", "PayFast Mode"), req("payfast_merchant_id", "PayFast Merchant ID"), secret("payfast_merchant_key", "PayFast Merchant Key"), secret("payfast_signature", "PayFast Salt Passphrase")}},
	{Key: "iyzipay", Name: "Iyzipay", Fields: []Field{opt("iyzipay_mode", "Iyzipay Mode"), req("iyzipay_key", "Iyzipay Key"), secret("iyzipay_secret", "Iyzipay Secret")}},
	{Key: "sspay", Name: "SSPay", Fields: []Field{req("sspay_category_code", "SSPay Category Code"), secret("sspay_secret_key", "SSPay Secret Key")}},
	{Key: "paytab", Name: "PayTab", Fields: []Field{req("paytab_profile_id", "PayTab Profile ID"), secret("paytab_server_key", "PayTab Server Key"), req("paytab_region", "PayTab Region")}},
	{Key: "benefit", Name: "Benefit", Fields: []Field{req("benefit_api_key", "Benefit API Key"), secret("benefit_secret_key", "Benefit Secret Key")}},
	{Key: "cashfree", Name: "Cashfree", Fields: []Field{req("cashfree_api_key", "Cashfree API Key"), secret("cashfree_secret_key", "Cashfree Secret Key")}},
	{Key: "aamarpay", Name: "Aamarpay", Fields: []Field{req("aamarpay_store_id", "Aamarpay Store ID"), secret("aamarpay_signature_key", "Aamarpay Signature Key"), opt("aamarpay_description", "Aamarpay Description")}},
	{Key: "paytr", Name: "PayTR", Fields: []Field{req("paytr_merchant_id", "PayTR Merchant ID"), secret("paytr_merchant_key", "PayTR Merchant Key"), secret("paytr_merchant_salt", "PayTR Merchant Salt")}},
	{Key: "yookassa", Name: "YooKassa", Fields: []Field{req("yookassa_shop_id", "YooKassa Shop ID"), secret("yookassa_secret", "YooKassa Secret")}},
	{Key: "midtrans", Name: "Midtrans", Fields: []Field{opt("midtrans_mode", "Midtrans Mode"), secret("midtrans_secret", "Midtrans Server Key")}},
	{Key: "xendit", Name: "Xendit", Fields: []Field{secret("xendit_api", "Xendit API Key"), secret("xendit_token", "Xendit Callback Token")}},
	{Key: "paiementpro", Name: "Paiement Pro", Fields: []Field{req("paiementpro_merchant_id", "Paiement Pro Merchant ID")}},
	{Key: "fedapay", Name: "FedaPay", Fields: []Field{opt("fedapay_mode", "FedaPay Mode"), req("fedapay_public_key", "FedaPay Public Key"), secret("fedapay_secret_key", "FedaPay Secret Key")}},
	{Key: "nepalste", Name: "Nepalste", Fields: []Field{opt("nepalste_mode", "Nepalste Mode"), req("nepalste_public_key", "Nepalste Public Key"), secret("nepalste_secret_key", "Nepalste Secret Key")}},
	{Key: "cinetpay", Name: "CinetPay", Fields: []Field{secret("cinetpay_api_key", "CinetPay API Key"), req("cinetpay_site_id", "CinetPay Site ID"), secret("cinetpay_secret_key", "CinetPay Secret Key")}},
}

var index = func() map[string]Descriptor {
	out := make(map[string]Descriptor, len(registry))
	for _, d := range registry {
		out[d.Key] = d
	}
	return out
}()

// Methods returns every known method in display order.
func Methods() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

func Lookup(key string) (Descriptor, bool) {
	d, ok := index[key]
	return d, ok
}
