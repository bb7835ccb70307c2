package config

import "github.com/spf13/viper"

type Features struct {
	BillingEnabled  bool
	DemoModeEnabled bool
	SignupEnabled   bool
}

func loadFeatures(v *viper.Viper) Features {
	return Features{
		BillingEnabled:  v.GetBool("BILLING_ENABLED"),
		DemoModeEnabled: v.GetBool("DEMO_MODE_ENABLED"),
		SignupEnabled:   v.GetBool("SIGNUP_ENABLED"),
	}
}
