package realtime

const SubscriberBuffer = subscriberBuffer
