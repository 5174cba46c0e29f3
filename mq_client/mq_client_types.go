package mq_client

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Queue struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

type Binding struct {
	Queue      string `yaml:"queue"`
	CleanStart bool   `yaml:"clean_start"`
	Exchange   string `yaml:"exchange"`
}

type Channel struct {
	Prefetch int `yaml:"prefetch"`
}

type MQClientConfig struct {
	Exchange struct {
		Auction    Exchange `yaml:"auction"`
		Settlement Exchange `yaml:"settlement"`
		Events     Exchange `yaml:"events"`
	}
	Queue struct {
		Auction         Queue `yaml:"auction"`
		Settlement      Queue `yaml:"settlement"`
		EventsProcessor Queue `yaml:"events_processor"`
	}
	Binding struct {
		Auction         Binding `yaml:"auction"`
		Settlement      Binding `yaml:"settlement"`
		EventsProcessor Binding `yaml:"events_processor"`
	}
	Channel struct {
		Auction    Channel `yaml:"auction"`
		Settlement Channel `yaml:"settlement"`
	}
}
