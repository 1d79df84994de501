package seeds

// Passage is one suggested reading with a short note for the ballot.
type Passage struct {
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type catalogEntry struct {
	Reference string
	Note      string
	Category  string
}

const (
	categoryNarrative  = "ot_narrative"
	categoryWisdom     = "wisdom"
	categoryProphets   = "prophets"
	categoryGospels    = "gospels"
	categoryEpistles   = "epistles"
	categoryRevelation = "revelation"
)

// The curated catalog, grouped by theological category for variety.
var catalog = []catalogEntry{
	{"Genesis 1:1-31", "The creation of the heavens and the earth", categoryNarrative},
	{"Genesis 3:1-24", "The fall of man in the garden of Eden", categoryNarrative},
	{"Genesis 12:1-9", "God's call and promise to Abram", categoryNarrative},
	{"Genesis 22:1-19", "Abraham's faith tested with Isaac", categoryNarrative},
	{"Genesis 32:22-32", "Jacob wrestles with God at Peniel", categoryNarrative},
	{"Genesis 37:1-36", "Joseph sold by his brothers", categoryNarrative},
	{"Genesis 45:1-15", "Joseph reveals himself to his brothers", categoryNarrative},
	{"Exodus 3:1-22", "Moses and the burning bush", categoryNarrative},
	{"Exodus 14:10-31", "Crossing the Red Sea", categoryNarrative},
	{"Exodus 20:1-21", "The Ten Commandments", categoryNarrative},
	{"Joshua 1:1-9", "Be strong and courageous", categoryNarrative},
	{"Joshua 24:14-28", "Choose this day whom you will serve", categoryNarrative},
	{"Judges 6:11-40", "Gideon called by God", categoryNarrative},
	{"Ruth 1:1-22", "Ruth's loyalty to Naomi", categoryNarrative},
	{"1 Samuel 3:1-21", "God calls young Samuel", categoryNarrative},
	{"1 Samuel 16:1-13", "David anointed as king", categoryNarrative},
	{"1 Samuel 17:32-50", "David defeats Goliath", categoryNarrative},
	{"2 Samuel 11:1-27", "David and Bathsheba — consequences of sin", categoryNarrative},
	{"1 Kings 3:5-28", "Solomon asks for wisdom", categoryNarrative},
	{"1 Kings 18:20-40", "Elijah and the prophets of Baal", categoryNarrative},
	{"1 Kings 19:1-18", "Elijah flees and hears God's still small voice", categoryNarrative},
	{"2 Kings 5:1-19", "Naaman healed of leprosy", categoryNarrative},
	{"Daniel 3:1-30", "Shadrach, Meshach, and Abednego in the fiery furnace", categoryNarrative},
	{"Daniel 6:1-28", "Daniel in the lion's den", categoryNarrative},
	{"Jonah 1:1-17", "Jonah flees from God", categoryNarrative},
	{"Jonah 3:1-10", "Nineveh repents", categoryNarrative},
	{"Nehemiah 1:1-11", "Nehemiah's prayer for Jerusalem", categoryNarrative},
	{"Esther 4:1-17", "For such a time as this", categoryNarrative},

	{"Psalm 1", "The way of the righteous and the wicked", categoryWisdom},
	{"Psalm 8", "How majestic is your name in all the earth", categoryWisdom},
	{"Psalm 16", "Preserve me, O God — fullness of joy", categoryWisdom},
	{"Psalm 19", "The heavens declare the glory of God", categoryWisdom},
	{"Psalm 23", "The Lord is my shepherd", categoryWisdom},
	{"Psalm 27", "The Lord is my light and my salvation", categoryWisdom},
	{"Psalm 34", "Taste and see that the Lord is good", categoryWisdom},
	{"Psalm 37:1-11", "Do not fret — delight in the Lord", categoryWisdom},
	{"Psalm 40:1-10", "He set my feet upon a rock", categoryWisdom},
	{"Psalm 42", "As the deer pants for streams of water", categoryWisdom},
	{"Psalm 46", "God is our refuge and strength", categoryWisdom},
	{"Psalm 51", "Create in me a clean heart", categoryWisdom},
	{"Psalm 63", "My soul thirsts for you", categoryWisdom},
	{"Psalm 84", "How lovely is your dwelling place", categoryWisdom},
	{"Psalm 90", "Teach us to number our days", categoryWisdom},
	{"Psalm 91", "He who dwells in the shelter of the Most High", categoryWisdom},
	{"Psalm 103", "Bless the Lord, O my soul", categoryWisdom},
	{"Psalm 119:1-24", "Blessed are the undefiled in the way", categoryWisdom},
	{"Psalm 121", "I lift up my eyes to the hills", categoryWisdom},
	{"Psalm 139:1-18", "You have searched me and known me", categoryWisdom},
	{"Psalm 145", "Great is the Lord and greatly to be praised", categoryWisdom},
	{"Proverbs 1:1-19", "The beginning of knowledge", categoryWisdom},
	{"Proverbs 2:1-22", "The value of wisdom", categoryWisdom},
	{"Proverbs 3:1-12", "Trust in the Lord with all your heart", categoryWisdom},
	{"Proverbs 4:1-27", "Guard your heart above all else", categoryWisdom},
	{"Proverbs 31:10-31", "The excellent wife", categoryWisdom},
	{"Ecclesiastes 3:1-15", "A time for everything under heaven", categoryWisdom},
	{"Ecclesiastes 12:1-14", "Remember your Creator in your youth", categoryWisdom},
	{"Song of Solomon 2:1-17", "Love poetry — the rose of Sharon", categoryWisdom},
	{"Job 1:1-22", "Job's suffering and faithfulness", categoryWisdom},
	{"Job 38:1-41", "God answers Job from the whirlwind", categoryWisdom},

	{"Isaiah 6:1-13", "Isaiah's vision — here am I, send me", categoryProphets},
	{"Isaiah 9:1-7", "For unto us a child is born", categoryProphets},
	{"Isaiah 40:1-31", "Comfort my people — those who wait on the Lord", categoryProphets},
	{"Isaiah 43:1-13", "Fear not, for I have redeemed you", categoryProphets},
	{"Isaiah 53:1-12", "The suffering servant", categoryProphets},
	{"Isaiah 55:1-13", "Come, everyone who thirsts", categoryProphets},
	{"Isaiah 61:1-11", "The Spirit of the Lord is upon me", categoryProphets},
	{"Jeremiah 1:1-19", "Before I formed you in the womb I knew you", categoryProphets},
	{"Jeremiah 17:5-10", "Blessed is the man who trusts in the Lord", categoryProphets},
	{"Jeremiah 29:10-14", "Plans to prosper you and not to harm you", categoryProphets},
	{"Jeremiah 31:31-34", "The new covenant", categoryProphets},
	{"Ezekiel 37:1-14", "Valley of dry bones", categoryProphets},
	{"Hosea 6:1-6", "Return to the Lord — steadfast love, not sacrifice", categoryProphets},
	{"Joel 2:12-32", "Return to the Lord — I will pour out my Spirit", categoryProphets},
	{"Amos 5:18-27", "Let justice roll down like waters", categoryProphets},
	{"Micah 6:6-8", "Do justice, love mercy, walk humbly", categoryProphets},
	{"Habakkuk 3:17-19", "Yet I will rejoice in the Lord", categoryProphets},
	{"Malachi 3:1-12", "The messenger of the covenant — bring the tithes", categoryProphets},

	{"Matthew 4:1-11", "Jesus tempted in the wilderness", categoryGospels},
	{"Matthew 5:1-16", "The Beatitudes — salt and light", categoryGospels},
	{"Matthew 5:17-48", "You have heard it said — the higher law", categoryGospels},
	{"Matthew 6:1-18", "The Lord's Prayer and true devotion", categoryGospels},
	{"Matthew 6:25-34", "Do not be anxious — seek first the kingdom", categoryGospels},
	{"Matthew 7:1-29", "Judge not — build on the rock", categoryGospels},
	{"Matthew 13:1-23", "Parable of the sower", categoryGospels},
	{"Matthew 14:22-33", "Jesus walks on water", categoryGospels},
	{"Matthew 18:1-14", "Become like children — the lost sheep", categoryGospels},
	{"Matthew 25:14-30", "Parable of the talents", categoryGospels},
	{"Matthew 25:31-46", "The sheep and the goats — as you did to the least", categoryGospels},
	{"Matthew 28:1-20", "The resurrection and great commission", categoryGospels},
	{"Mark 1:1-20", "The beginning of the gospel — Jesus calls disciples", categoryGospels},
	{"Mark 2:1-12", "The paralytic lowered through the roof", categoryGospels},
	{"Mark 4:35-41", "Jesus calms the storm", categoryGospels},
	{"Mark 10:17-31", "The rich young ruler", categoryGospels},
	{"Mark 10:32-45", "The Son of Man came to serve", categoryGospels},
	{"Luke 1:26-56", "The annunciation and Mary's song", categoryGospels},
	{"Luke 2:1-20", "The birth of Jesus", categoryGospels},
	{"Luke 4:14-30", "Jesus rejected at Nazareth", categoryGospels},
	{"Luke 10:25-37", "The good Samaritan", categoryGospels},
	{"Luke 10:38-42", "Mary and Martha", categoryGospels},
	{"Luke 15:1-10", "The lost sheep and lost coin", categoryGospels},
	{"Luke 15:11-32", "The prodigal son", categoryGospels},
	{"Luke 18:1-14", "The persistent widow and the Pharisee and tax collector", categoryGospels},
	{"Luke 19:1-10", "Zacchaeus the tax collector", categoryGospels},
	{"Luke 24:13-35", "The road to Emmaus", categoryGospels},
	{"John 1:1-18", "In the beginning was the Word", categoryGospels},
	{"John 3:1-21", "You must be born again", categoryGospels},
	{"John 4:1-42", "The woman at the well", categoryGospels},
	{"John 6:22-40", "I am the bread of life", categoryGospels},
	{"John 8:1-11", "The woman caught in adultery", categoryGospels},
	{"John 10:1-18", "The good shepherd", categoryGospels},
	{"John 11:1-44", "Lazarus raised from the dead", categoryGospels},
	{"John 13:1-17", "Jesus washes the disciples' feet", categoryGospels},
	{"John 14:1-14", "I am the way, the truth, and the life", categoryGospels},
	{"John 15:1-17", "I am the vine — abide in me", categoryGospels},
	{"John 17:1-26", "Jesus' high priestly prayer", categoryGospels},
	{"John 20:1-31", "The resurrection — Thomas believes", categoryGospels},
	{"John 21:1-25", "Jesus restores Peter — feed my sheep", categoryGospels},

	{"Acts 2:1-21", "The Holy Spirit at Pentecost", categoryEpistles},
	{"Acts 2:42-47", "The fellowship of believers", categoryEpistles},
	{"Acts 9:1-22", "Saul's conversion on the road to Damascus", categoryEpistles},
	{"Acts 17:16-34", "Paul in Athens — the unknown God", categoryEpistles},
	{"Romans 1:16-32", "The righteous shall live by faith", categoryEpistles},
	{"Romans 3:21-31", "Justified by faith, apart from the law", categoryEpistles},
	{"Romans 5:1-11", "Peace with God through our Lord Jesus Christ", categoryEpistles},
	{"Romans 6:1-14", "Dead to sin, alive to God", categoryEpistles},
	{"Romans 8:1-17", "Life in the Spirit — no condemnation", categoryEpistles},
	{"Romans 8:18-39", "Nothing can separate us from God's love", categoryEpistles},
	{"Romans 12:1-21", "Living sacrifices — do not be conformed to this world", categoryEpistles},
	{"1 Corinthians 1:18-31", "The foolishness of the cross", categoryEpistles},
	{"1 Corinthians 9:24-27", "Run to win the prize", categoryEpistles},
	{"1 Corinthians 12:1-31", "One body, many parts — spiritual gifts", categoryEpistles},
	{"1 Corinthians 13:1-13", "The way of love", categoryEpistles},
	{"1 Corinthians 15:1-28", "Christ is risen — the resurrection", categoryEpistles},
	{"2 Corinthians 4:1-18", "Treasure in jars of clay", categoryEpistles},
	{"2 Corinthians 5:11-21", "New creation — ministry of reconciliation", categoryEpistles},
	{"2 Corinthians 12:1-10", "My grace is sufficient — power in weakness", categoryEpistles},
	{"Galatians 2:15-21", "Justified by faith in Christ", categoryEpistles},
	{"Galatians 5:1-26", "Freedom in Christ — fruit of the Spirit", categoryEpistles},
	{"Ephesians 1:3-14", "Every spiritual blessing in Christ", categoryEpistles},
	{"Ephesians 2:1-10", "By grace you have been saved through faith", categoryEpistles},
	{"Ephesians 3:14-21", "To know the love of Christ", categoryEpistles},
	{"Ephesians 4:1-16", "Walk worthy — unity in the body", categoryEpistles},
	{"Ephesians 6:10-20", "The full armor of God", categoryEpistles},
	{"Philippians 1:3-11", "He who began a good work in you", categoryEpistles},
	{"Philippians 2:1-11", "Have this mind — Christ's humility and exaltation", categoryEpistles},
	{"Philippians 3:7-21", "Counting all things as loss for Christ", categoryEpistles},
	{"Philippians 4:4-13", "Rejoice always — I can do all things through Christ", categoryEpistles},
	{"Colossians 1:15-23", "The supremacy of Christ", categoryEpistles},
	{"Colossians 3:1-17", "Set your minds on things above", categoryEpistles},
	{"1 Thessalonians 4:13-18", "The coming of the Lord", categoryEpistles},
	{"1 Thessalonians 5:12-28", "Rejoice, pray, give thanks — practical holiness", categoryEpistles},
	{"2 Timothy 2:1-13", "Be strong in the grace — endure", categoryEpistles},
	{"2 Timothy 3:10-17", "All Scripture is God-breathed", categoryEpistles},
	{"Hebrews 1:1-14", "God has spoken by his Son", categoryEpistles},
	{"Hebrews 4:1-16", "A Sabbath rest — approach the throne of grace boldly", categoryEpistles},
	{"Hebrews 11:1-16", "The hall of faith — by faith they...", categoryEpistles},
	{"Hebrews 11:17-40", "More from the hall of faith — all commended", categoryEpistles},
	{"Hebrews 12:1-13", "Run with endurance — looking to Jesus", categoryEpistles},
	{"James 1:1-27", "Count it all joy — be doers of the word", categoryEpistles},
	{"James 2:1-26", "Faith without works is dead", categoryEpistles},
	{"James 3:1-18", "Taming the tongue", categoryEpistles},
	{"1 Peter 1:3-12", "A living hope — an inheritance imperishable", categoryEpistles},
	{"1 Peter 2:1-12", "Living stones — a chosen people", categoryEpistles},
	{"1 Peter 5:1-11", "Cast all your anxieties on him", categoryEpistles},
	{"2 Peter 1:3-11", "His divine power has granted us everything", categoryEpistles},
	{"1 John 1:1-10", "Walking in the light", categoryEpistles},
	{"1 John 3:1-24", "See what kind of love the Father has given us", categoryEpistles},
	{"1 John 4:7-21", "God is love", categoryEpistles},

	{"Revelation 1:1-20", "The revelation of Jesus Christ — a vision of glory", categoryRevelation},
	{"Revelation 2:1-7", "Letter to Ephesus — return to your first love", categoryRevelation},
	{"Revelation 3:14-22", "Letter to Laodicea — I stand at the door and knock", categoryRevelation},
	{"Revelation 4:1-11", "The throne room of heaven", categoryRevelation},
	{"Revelation 5:1-14", "The Lamb is worthy to open the scroll", categoryRevelation},
	{"Revelation 7:9-17", "The great multitude from every nation", categoryRevelation},
	{"Revelation 21:1-8", "A new heaven and a new earth", categoryRevelation},
	{"Revelation 22:1-21", "The river of life — come, Lord Jesus", categoryRevelation},
}

// CatalogSize is the number of curated passages, exported for tests that
// exercise full-catalog exclusion.
func CatalogSize() int {
	return len(catalog)
}
